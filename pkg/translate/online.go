package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/japaniel/lexilookup/pkg/vocab"
)

const defaultOnlineURL = "https://translation.googleapis.com/language/translate/v2"

// Online delegates translation to a Google Translate v2 compatible REST API.
// It keeps no state; synonyms and autocomplete are not offered remotely.
type Online struct {
	baseURL    string
	apiKey     string
	target     string
	httpClient *http.Client
	log        *slog.Logger
}

// NewOnline creates an online backend. An empty baseURL selects the public
// Google endpoint; target is the language translations are requested in.
func NewOnline(baseURL, apiKey, target string, timeout time.Duration, logger *slog.Logger) *Online {
	if baseURL == "" {
		baseURL = defaultOnlineURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Online{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		target:     target,
		httpClient: &http.Client{Timeout: timeout},
		log:        logger.With("adapter", "online"),
	}
}

// Initialize is a no-op; the remote API needs no preparation.
func (o *Online) Initialize(ctx context.Context) error { return nil }

// Translate asks the remote API for translations of word into the target
// language. An empty word or an empty answer is reported as not found.
func (o *Online) Translate(ctx context.Context, word string) (*Result, error) {
	if strings.TrimSpace(word) == "" {
		return nil, &vocab.NotFoundError{Word: word}
	}

	q := url.Values{}
	q.Set("key", o.apiKey)
	q.Set("target", o.target)
	q.Set("q", word)

	var body translateResponse
	if err := o.get(ctx, o.baseURL+"?"+q.Encode(), word, &body); err != nil {
		return nil, err
	}

	translations := body.Data.Translations
	if len(translations) == 0 {
		return nil, &vocab.NotFoundError{Word: word}
	}

	res := &Result{Results: make([]vocab.Entry, 0, len(translations))}
	for _, t := range translations {
		res.Results = append(res.Results, vocab.Entry{
			Word:    html.UnescapeString(t.TranslatedText),
			Culture: o.target,
		})
	}
	if lang := translations[0].DetectedSourceLanguage; lang != "" {
		res.SourceLanguage = strPtr(lang)
	}

	o.log.DebugContext(ctx, "online translation",
		slog.String("word", word),
		slog.Int("results", len(res.Results)),
	)
	return res, nil
}

// FindSynonyms always returns an empty result.
func (o *Online) FindSynonyms(ctx context.Context, word string) (*Result, error) {
	return &Result{Results: []vocab.Entry{}}, nil
}

// FindAutocompleteSuggestions always returns no suggestions.
func (o *Online) FindAutocompleteSuggestions(ctx context.Context, prefix string) []string {
	return []string{}
}

// DetectLanguage returns the most likely language of text.
func (o *Online) DetectLanguage(ctx context.Context, text string) (string, error) {
	q := url.Values{}
	q.Set("key", o.apiKey)
	q.Set("q", text)

	var body detectResponse
	if err := o.get(ctx, o.baseURL+"/detect?"+q.Encode(), text, &body); err != nil {
		return "", err
	}
	for _, group := range body.Data.Detections {
		if len(group) > 0 && group[0].Language != "" {
			return group[0].Language, nil
		}
	}
	return "", &vocab.NotFoundError{Word: text}
}

func (o *Online) get(ctx context.Context, reqURL, word string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("online: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := o.doWithRetry(ctx, req, word)
	if err != nil {
		o.log.ErrorContext(ctx, "online request failed", slog.String("word", word), slog.String("error", err.Error()))
		return fmt.Errorf("online: request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("online: unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("online: read body: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("online: decode json: %w", err)
	}
	return nil
}

// doWithRetry executes the request with a single retry on 5xx or network errors.
func (o *Online) doWithRetry(ctx context.Context, req *http.Request, word string) (*http.Response, error) {
	resp, err := o.httpClient.Do(req)

	shouldRetry := err != nil || (resp != nil && resp.StatusCode >= 500)
	if !shouldRetry || ctx.Err() != nil {
		return resp, err
	}

	reason := "network error"
	if err == nil {
		reason = fmt.Sprintf("status %d", resp.StatusCode)
	}
	o.log.WarnContext(ctx, "online retry", slog.String("word", word), slog.String("reason", reason))

	if resp != nil && resp.Body != nil {
		resp.Body.Close()
	}

	select {
	case <-time.After(200 * time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	return o.httpClient.Do(req)
}
