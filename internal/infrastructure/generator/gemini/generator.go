package gemini

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"github.com/wekeepgrowing/uxpilot-billing/internal/domain/provider"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

const tailwindCDN = `<script src="https://cdn.tailwindcss.com"></script>`

// contentModel is the subset of *genai.GenerativeModel the generator calls.
type contentModel interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Generator implements provider.DesignGenerator on Gemini.
type Generator struct {
	client *genai.Client
	model  contentModel
	logger *zap.Logger
}

// NewGenerator creates a Gemini backed design generator.
func NewGenerator(ctx context.Context, apiKey, modelName string, logger *zap.Logger) (*Generator, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(systemPrompt)},
	}

	return &Generator{client: client, model: model, logger: logger}, nil
}

func (g *Generator) Close() error {
	if g.client == nil {
		return nil
	}
	return g.client.Close()
}

func (g *Generator) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GeneratedDesign, error) {
	res, err := g.model.GenerateContent(ctx, genai.Text(buildPrompt(req)))
	if err != nil {
		return nil, fmt.Errorf("gemini generate content: %w", err)
	}

	var sb strings.Builder
	if len(res.Candidates) > 0 && res.Candidates[0].Content != nil {
		for _, part := range res.Candidates[0].Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	if sb.Len() == 0 {
		return nil, errors.New("gemini returned no content")
	}

	html := wrapWithTailwind(cleanHTML(sb.String()))
	design := &provider.GeneratedDesign{ID: uuid.NewString(), HTML: html}

	g.logger.Debug("Design generated",
		zap.String("design_id", design.ID),
		zap.String("use_case", req.UseCase),
		zap.Int("html_length", len(html)))

	return design, nil
}

const systemPrompt = `You are an expert UI/UX designer and frontend engineer. Generate a single, production-ready HTML document using Tailwind CSS.
Output ONLY the complete HTML document. No code fences, commentary, or explanations.
The document must begin with <!DOCTYPE html> or <html>.
Use semantic HTML elements and make the layout responsive and accessible.`

func buildPrompt(req *provider.GenerateRequest) string {
	style := "Create a high-fidelity, polished UI."
	if req.UseCase == "wireframes" {
		style = "Use a wireframe-style layout with placeholders."
	}
	return fmt.Sprintf("%s\nOptimize the design for %s screens first.\n\nRequirements:\n%s",
		style, req.ScreenType, strings.TrimSpace(req.Context))
}

var (
	fencePrefix   = regexp.MustCompile("(?i)^```(?:html)?\\s*")
	fenceSuffix   = regexp.MustCompile("```\\s*$")
	htmlComments  = regexp.MustCompile(`<!--[\s\S]*?-->`)
	documentStart = regexp.MustCompile(`(?i)<!DOCTYPE|<html`)
	headTag       = regexp.MustCompile(`(?i)<\s*head(\s*[^>]*)>`)
	htmlTag       = regexp.MustCompile(`(?i)<\s*html(\s*[^>]*)>`)
)

// cleanHTML strips code fences, preambles and comments from model output.
func cleanHTML(raw string) string {
	cleaned := strings.TrimSpace(raw)
	cleaned = fencePrefix.ReplaceAllString(cleaned, "")
	cleaned = fenceSuffix.ReplaceAllString(cleaned, "")
	cleaned = htmlComments.ReplaceAllString(cleaned, "")
	if loc := documentStart.FindStringIndex(cleaned); loc != nil && loc[0] > 0 {
		cleaned = cleaned[loc[0]:]
	}
	return strings.TrimSpace(cleaned)
}

// wrapWithTailwind makes sure the document loads the Tailwind CDN.
func wrapWithTailwind(html string) string {
	if strings.Contains(html, "cdn.tailwindcss.com") {
		return html
	}
	if documentStart.MatchString(html) {
		if headTag.MatchString(html) {
			return headTag.ReplaceAllString(html, "<head$1>\n"+tailwindCDN)
		}
		return htmlTag.ReplaceAllString(html, "<html$1>\n<head>\n  <meta charset=\"UTF-8\" />\n  "+tailwindCDN+"\n</head>")
	}
	return "<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n  <meta charset=\"UTF-8\" />\n  <meta name=\"viewport\" content=\"width=device-width, initial-scale=1.0\" />\n  " +
		tailwindCDN + "\n</head>\n<body class=\"bg-gray-50\">\n" + html + "\n</body>\n</html>"
}

// ErrNotConfigured is returned by Unavailable.
var ErrNotConfigured = errors.New("design generator is not configured")

// Unavailable stands in when no Gemini API key is configured.
type Unavailable struct{}

func (Unavailable) Generate(ctx context.Context, req *provider.GenerateRequest) (*provider.GeneratedDesign, error) {
	return nil, ErrNotConfigured
}
