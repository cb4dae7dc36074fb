package fetch

import (
	"bytes"
	"fmt"
	"net/url"

	"github.com/go-shiori/go-readability"
)

// ReadabilityExtractor - алгоритм Readability, лучше справляется с новостными сайтами
type ReadabilityExtractor struct{}

func (ReadabilityExtractor) Extract(body []byte, pageURL *url.URL) (string, error) {
	article, err := readability.FromReader(bytes.NewReader(body), pageURL)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrParseFailed, err)
	}
	return article.TextContent, nil
}
