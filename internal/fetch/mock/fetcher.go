package mock

import (
	"context"
	"sync"
	"time"

	"github.com/kitbuilder587/research-bot/internal/fetch"
)

var _ fetch.Fetcher = (*Fetcher)(nil)

// Fetcher отдает заготовленный текст по URL. Неизвестный URL - ошибка Error или ErrEmptyContent.
type Fetcher struct {
	Pages  map[string]string
	Errors map[string]error
	Error  error
	Delay  time.Duration

	CallCount int
	URLs      []string

	mu sync.Mutex
}

func New() *Fetcher {
	return &Fetcher{
		Pages:  make(map[string]string),
		Errors: make(map[string]error),
	}
}

func (f *Fetcher) WithPage(url, text string) *Fetcher {
	f.Pages[url] = text
	return f
}

func (f *Fetcher) WithURLError(url string, err error) *Fetcher {
	f.Errors[url] = err
	return f
}

func (f *Fetcher) WithError(err error) *Fetcher {
	f.Error = err
	return f
}

func (f *Fetcher) WithDelay(d time.Duration) *Fetcher {
	f.Delay = d
	return f
}

func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	f.mu.Lock()
	f.CallCount++
	f.URLs = append(f.URLs, url)
	text, ok := f.Pages[url]
	urlErr := f.Errors[url]
	err := f.Error
	delay := f.Delay
	f.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(delay):
		}
	}

	if urlErr != nil {
		return "", urlErr
	}
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fetch.ErrEmptyContent
	}
	return text, nil
}

func (f *Fetcher) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CallCount
}
