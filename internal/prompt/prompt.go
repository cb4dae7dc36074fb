package prompt

import (
	"fmt"
	"strings"

	"github.com/kitbuilder587/research-bot/internal/domain"
)

// шаблоны: тема, список источников, собранный контент
var researchTemplates = map[domain.Depth]string{
	domain.DepthBasic: `Please provide a concise but substantial summary of the topic "%s" based on the following information from multiple sources (%s):
%s

Your summary should:
1. Be approximately 1000 words
2. Cover the most important facts and concepts
3. Be accurate, educational, and well-structured
4. Use clear, accessible language
5. Synthesize information from multiple sources
6. Include section headings for better organization`,

	domain.DepthDetailed: `Please provide a detailed research summary of the topic "%s" based on the following information from multiple sources (%s):
%s

Your summary should:
1. Be approximately 2000-3000 words
2. Provide in-depth explanation of key concepts
3. Include important facts, definitions, and context
4. Organize information logically with clear section headings
5. Mention significant debates or different perspectives
6. Be educational and suitable for someone wanting to learn deeply about this topic
7. Synthesize information from multiple sources, noting any conflicting information
8. Include a conclusion section that summarizes key points`,

	domain.DepthComprehensive: `Please provide a comprehensive research report on the topic "%s" based on the following information from multiple sources (%s):
%s

Your report should:
1. Be thorough and detailed (approximately 5000+ words)
2. Start with an executive summary of key findings
3. Include a table of contents with clearly defined sections
4. Provide extensive background and context
5. Analyze trends, patterns, and developments
6. Present multiple perspectives and interpretations
7. Discuss implications and potential future developments
8. Organize information into clear sections with logical flow
9. Be scholarly in tone while remaining accessible
10. Include relevant examples, cases, or applications
11. Synthesize information from multiple sources, comparing and contrasting viewpoints
12. End with a comprehensive conclusion section
13. Ensure citations to sources are mentioned throughout the text`,
}

const analysisTemplate = `Based on the research about "%s" from sources including %s, provide a detailed analysis including:
1. Historical context
2. Current state and important developments
3. Future implications
4. Controversies or debates
5. Expert opinions
6. Comparative analysis
7. Practical applications`

const relatedTopicsTemplate = `Based on the research about "%s" from multiple sources including %s, suggest 7-10 closely related topics that would be valuable for further research. For each topic, provide a brief explanation of its relevance to "%s".`

// Research - промпт сводки. Неизвестная глубина считается basic.
func Research(topic, content string, depth domain.Depth, sources []domain.SourceKind) string {
	tmpl, ok := researchTemplates[depth]
	if !ok {
		tmpl = researchTemplates[domain.DepthBasic]
	}
	return strings.TrimSpace(fmt.Sprintf(tmpl, topic, domain.JoinSources(sources), content))
}

func Analysis(topic string, sources []domain.SourceKind) string {
	return fmt.Sprintf(analysisTemplate, topic, domain.JoinSources(sources))
}

func RelatedTopics(topic string, sources []domain.SourceKind) string {
	return fmt.Sprintf(relatedTopicsTemplate, topic, domain.JoinSources(sources), topic)
}

// ParseTopics - непустые строки ответа, обрезанные по краям
func ParseTopics(response string) []string {
	var topics []string
	for _, line := range strings.Split(response, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			topics = append(topics, line)
		}
	}
	return topics
}
