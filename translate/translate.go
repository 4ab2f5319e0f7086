package translate

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	endpoint  = "https://translate.googleapis.com/translate_a/single"
	chunkSize = 1000 // characters per translation call
)

// Translator translates text between languages. Per-chunk failures fall back
// to the original text; Translate never returns an error to the caller.
type Translator interface {
	Translate(text, sourceLang, targetLang string) string
}

// GoogleTranslator drives the public Google translate endpoint in bounded
// chunks with a small inter-call delay to stay under its rate limits.
type GoogleTranslator struct {
	httpClient *http.Client
	delay      time.Duration
}

func NewGoogleTranslator() *GoogleTranslator {
	return &GoogleTranslator{
		httpClient: &http.Client{Timeout: 20 * time.Second},
		delay:      500 * time.Millisecond,
	}
}

// Translate translates text chunk by chunk. Chunks that fail keep their
// original text; if nothing translates, a single full-text attempt over the
// first 4000 characters is made before giving the original back.
func (g *GoogleTranslator) Translate(text, sourceLang, targetLang string) string {
	fmt.Printf("Translating %d characters from %s to %s...\n", len(text), sourceLang, targetLang)

	chunks := splitRunes(text, chunkSize)
	fmt.Printf("Split into %d chunks\n", len(chunks))

	translated := make([]string, 0, len(chunks))
	successful := 0

	for i, chunk := range chunks {
		out, err := g.translateOnce(chunk, sourceLang, targetLang)
		if err != nil || strings.TrimSpace(out) == "" || out == chunk {
			if err != nil {
				fmt.Printf("Chunk %d/%d failed: %v\n", i+1, len(chunks), err)
			}
			translated = append(translated, chunk)
		} else {
			translated = append(translated, out)
			successful++
		}
		time.Sleep(g.delay)
	}

	fmt.Printf("Translation completed: successfully translated %d/%d chunks\n", successful, len(chunks))

	if successful == 0 {
		// One last attempt over a single larger window.
		head := text
		rest := ""
		if r := []rune(text); len(r) > 4000 {
			head, rest = string(r[:4000]), string(r[4000:])
		}
		if out, err := g.translateOnce(head, sourceLang, targetLang); err == nil && out != head && strings.TrimSpace(out) != "" {
			if rest != "" {
				return out + " " + rest
			}
			return out
		}
		return text
	}

	return strings.Join(translated, " ")
}

func (g *GoogleTranslator) translateOnce(text, sourceLang, targetLang string) (string, error) {
	q := url.Values{}
	q.Set("client", "gtx")
	q.Set("sl", sourceLang)
	q.Set("tl", targetLang)
	q.Set("dt", "t")
	q.Set("q", text)

	resp, err := g.httpClient.Get(endpoint + "?" + q.Encode())
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("translate request failed: %s", resp.Status)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	// Response shape: [[["translated","original",...],...],...]
	var payload []any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("malformed translate payload: %w", err)
	}
	if len(payload) == 0 {
		return "", fmt.Errorf("empty translate payload")
	}
	sentences, ok := payload[0].([]any)
	if !ok {
		return "", fmt.Errorf("unexpected translate payload shape")
	}
	var sb strings.Builder
	for _, s := range sentences {
		parts, ok := s.([]any)
		if !ok || len(parts) == 0 {
			continue
		}
		if t, ok := parts[0].(string); ok {
			sb.WriteString(t)
		}
	}
	return sb.String(), nil
}

func splitRunes(text string, size int) []string {
	r := []rune(text)
	if len(r) == 0 {
		return []string{""}
	}
	chunks := make([]string, 0, len(r)/size+1)
	for i := 0; i < len(r); i += size {
		end := i + size
		if end > len(r) {
			end = len(r)
		}
		chunks = append(chunks, string(r[i:end]))
	}
	return chunks
}
