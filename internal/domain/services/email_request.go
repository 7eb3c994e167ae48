package services

import (
	"fmt"
	"io"
	"strings"

	"github.com/jaytaylor/html2text"
	"github.com/jhillyerd/enmime"

	"checkcheck-api/internal/domain/models"
)

// EmailRequestFromMIME builds an analysis request from a raw RFC 5322
// message. The plain-text part is preferred; HTML-only messages are
// converted to text with links kept inline so the upstream can inspect them.
func EmailRequestFromMIME(r io.Reader) (models.EmailAnalysisRequest, error) {
	env, err := enmime.ReadEnvelope(r)
	if err != nil {
		return models.EmailAnalysisRequest{}, fmt.Errorf("failed to parse message: %w", err)
	}

	req := models.EmailAnalysisRequest{
		Subject: env.GetHeader("Subject"),
	}

	if from, err := env.AddressList("From"); err == nil && len(from) > 0 {
		req.FromEmail = from[0].Address
		req.FromName = from[0].Name
	} else {
		req.FromEmail = strings.TrimSpace(env.GetHeader("From"))
	}

	body := env.Text
	if strings.TrimSpace(body) == "" && env.HTML != "" {
		text, err := html2text.FromString(env.HTML, html2text.Options{OmitLinks: false})
		if err != nil {
			return models.EmailAnalysisRequest{}, fmt.Errorf("failed to convert html body: %w", err)
		}
		body = text
	}
	req.Body = body

	return NormalizeEmailRequest(req), nil
}
