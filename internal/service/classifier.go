package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"math"
	"path"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/go-resty/resty/v2"
	"github.com/timmy/hotelsense/internal/catalog"
	"github.com/timmy/hotelsense/internal/config"
	"github.com/timmy/hotelsense/internal/domain"
	"github.com/timmy/hotelsense/internal/metrics"
	"github.com/timmy/hotelsense/internal/prompts"
	_ "golang.org/x/image/webp"
)

// ErrUnexpectedOutput is returned when the model answers outside the
// requested format or vocabulary.
var ErrUnexpectedOutput = errors.New("unexpected classifier output")

// Token budgets per operation.
const (
	categorizeMaxTokens = 100
	roomMaxTokens       = 300
	amenityMaxTokens    = 300
	qualityMaxTokens    = 200
)

// VisionClassifier implements domain.Classifier against an OpenAI-compatible
// chat completions endpoint.
type VisionClassifier struct {
	client   *resty.Client
	model    string
	endpoint string
	maxEdge  int
}

// NewVisionClassifier creates a new vision classifier.
// Parameters:
//   - cfg: VLM configuration including model, API key and base URL.
//
// Returns:
//   - *VisionClassifier: initialized client wrapper.
func NewVisionClassifier(cfg *config.VLMConfig) *VisionClassifier {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	client := resty.New()
	client.SetHeader("Authorization", "Bearer "+cfg.APIKey)
	client.SetHeader("Content-Type", "application/json")
	client.SetTimeout(timeout)

	baseURL := strings.TrimSuffix(cfg.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}

	return &VisionClassifier{
		client:   client,
		model:    cfg.Model,
		endpoint: baseURL + "/chat/completions",
		maxEdge:  cfg.MaxImageEdge,
	}
}

// GetModel returns the model name being used.
func (c *VisionClassifier) GetModel() string {
	return c.model
}

// OpenAI-compatible Chat Completion API request/response structures
type openAIRequest struct {
	Model     string          `json:"model"`
	Messages  []openAIMessage `json:"messages"`
	MaxTokens int             `json:"max_tokens"`
}

type openAIMessage struct {
	Role    string      `json:"role"`
	Content interface{} `json:"content"` // string for system, []interface{} for user with images
}

type openAITextContent struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type openAIImageContent struct {
	Type     string         `json:"type"`
	ImageURL openAIImageURL `json:"image_url"`
}

type openAIImageURL struct {
	URL    string `json:"url"`
	Detail string `json:"detail,omitempty"`
}

type openAIResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

func (c *VisionClassifier) Categorize(ctx context.Context, img domain.ImageData) (domain.ImageCategory, error) {
	text, err := c.complete(ctx, "categorize", prompts.CategorizePrompt, img, categorizeMaxTokens)
	if err != nil {
		return "", err
	}
	return parseCategory(text)
}

func (c *VisionClassifier) ExtractRoom(ctx context.Context, img domain.ImageData) (domain.RoomLabel, error) {
	text, err := c.complete(ctx, "extract_room", prompts.RoomPrompt(img.Path), img, roomMaxTokens)
	if err != nil {
		return domain.RoomLabel{}, err
	}
	return parseRoom(text)
}

func (c *VisionClassifier) DetectAmenities(ctx context.Context, img domain.ImageData) ([]string, error) {
	text, err := c.complete(ctx, "detect_amenities", prompts.AmenityPrompt, img, amenityMaxTokens)
	if err != nil {
		return nil, err
	}
	return parseAmenities(text), nil
}

func (c *VisionClassifier) ScoreQuality(ctx context.Context, img domain.ImageData) (domain.QualityScore, error) {
	text, err := c.complete(ctx, "score_quality", prompts.QualityPrompt, img, qualityMaxTokens)
	if err != nil {
		return domain.QualityScore{}, err
	}
	return parseScore(text)
}

// complete sends one image with one instruction and returns the raw answer.
func (c *VisionClassifier) complete(ctx context.Context, op, prompt string, img domain.ImageData, maxTokens int) (text string, err error) {
	start := time.Now()
	defer func() { metrics.ObserveClassifier(op, err, time.Since(start)) }()

	mimeType, data, err := prepareImage(img, c.maxEdge)
	if err != nil {
		return "", err
	}
	dataURL := fmt.Sprintf("data:%s;base64,%s", mimeType, base64.StdEncoding.EncodeToString(data))

	req := openAIRequest{
		Model: c.model,
		Messages: []openAIMessage{
			{
				Role:    "system",
				Content: prompts.SystemPrompt,
			},
			{
				Role: "user",
				Content: []interface{}{
					openAIImageContent{
						Type: "image_url",
						ImageURL: openAIImageURL{
							URL:    dataURL,
							Detail: "auto",
						},
					},
					openAITextContent{
						Type: "text",
						Text: prompt,
					},
				},
			},
		},
		MaxTokens: maxTokens,
	}

	var resp openAIResponse
	httpResp, err := c.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&resp).
		SetError(&resp).
		Post(c.endpoint)
	if err != nil {
		return "", fmt.Errorf("failed to call VLM API: %w", err)
	}

	if httpResp.StatusCode() < 200 || httpResp.StatusCode() >= 300 {
		if resp.Error != nil {
			return "", fmt.Errorf("VLM API returned error: HTTP %d: %s", httpResp.StatusCode(), resp.Error.Message)
		}
		return "", fmt.Errorf("VLM API returned error: HTTP %d: %s", httpResp.StatusCode(), string(httpResp.Body()))
	}
	if resp.Error != nil {
		return "", fmt.Errorf("VLM API error: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from VLM API: no choices in response (status: %d)", httpResp.StatusCode())
	}

	return resp.Choices[0].Message.Content, nil
}

var extensionMediaTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// mediaTypeFromPath falls back to image/jpeg for unknown extensions.
func mediaTypeFromPath(p string) string {
	if mt, ok := extensionMediaTypes[strings.ToLower(path.Ext(p))]; ok {
		return mt
	}
	return "image/jpeg"
}

// prepareImage sniffs the media type from the bytes and downscales images
// whose longest edge exceeds maxEdge. Bytes that do not decode are sent as is.
func prepareImage(img domain.ImageData, maxEdge int) (string, []byte, error) {
	cfg, format, err := image.DecodeConfig(bytes.NewReader(img.Bytes))
	if err != nil {
		return mediaTypeFromPath(img.Path), img.Bytes, nil
	}
	mimeType := "image/" + format

	if maxEdge <= 0 || (cfg.Width <= maxEdge && cfg.Height <= maxEdge) {
		return mimeType, img.Bytes, nil
	}

	decoded, err := imaging.Decode(bytes.NewReader(img.Bytes), imaging.AutoOrientation(true))
	if err != nil {
		return "", nil, fmt.Errorf("failed to decode image for resize: %w", err)
	}
	resized := imaging.Fit(decoded, maxEdge, maxEdge, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(85)); err != nil {
		return "", nil, fmt.Errorf("failed to encode resized image: %w", err)
	}
	return "image/jpeg", buf.Bytes(), nil
}

func parseCategory(text string) (domain.ImageCategory, error) {
	label := strings.ToLower(strings.TrimSpace(text))
	label = strings.Trim(label, "\"'` .\n")
	c := domain.ImageCategory(label)
	if !catalog.IsCategory(c) {
		return "", fmt.Errorf("%w: category %q", ErrUnexpectedOutput, text)
	}
	return c, nil
}

// jsonObject extracts the outermost {...} from text, tolerating code fences
// and chatter around the object.
func jsonObject(text string) (string, error) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end < start {
		return "", fmt.Errorf("%w: no JSON object in %q", ErrUnexpectedOutput, text)
	}
	return text[start : end+1], nil
}

func parseRoom(text string) (domain.RoomLabel, error) {
	raw, err := jsonObject(text)
	if err != nil {
		return domain.RoomLabel{}, err
	}
	var out struct {
		Name string `json:"name"`
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return domain.RoomLabel{}, fmt.Errorf("%w: %v", ErrUnexpectedOutput, err)
	}
	roomType := strings.ToLower(strings.TrimSpace(out.Type))
	if !catalog.IsRoomType(roomType) {
		return domain.RoomLabel{}, fmt.Errorf("%w: room type %q", ErrUnexpectedOutput, out.Type)
	}
	return domain.RoomLabel{Name: strings.TrimSpace(out.Name), Type: roomType}, nil
}

// parseAmenities splits a comma-separated answer into lowercase labels,
// keeping first-seen order.
func parseAmenities(text string) []string {
	seen := make(map[string]struct{})
	var labels []string
	for _, part := range strings.Split(text, ",") {
		label := strings.ToLower(strings.TrimSpace(part))
		if label == "" {
			continue
		}
		if _, dup := seen[label]; dup {
			continue
		}
		seen[label] = struct{}{}
		labels = append(labels, label)
	}
	return labels
}

func parseScore(text string) (domain.QualityScore, error) {
	raw, err := jsonObject(text)
	if err != nil {
		return domain.QualityScore{}, err
	}
	var out struct {
		Score  *float64 `json:"score"`
		Reason string   `json:"reason"`
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return domain.QualityScore{}, fmt.Errorf("%w: %v", ErrUnexpectedOutput, err)
	}
	if out.Score == nil {
		return domain.QualityScore{}, fmt.Errorf("%w: missing score", ErrUnexpectedOutput)
	}
	s := *out.Score
	if s != math.Trunc(s) || s < 0 || s > 100 {
		return domain.QualityScore{}, fmt.Errorf("%w: score %v out of range", ErrUnexpectedOutput, s)
	}
	return domain.QualityScore{Score: int(s), Reason: out.Reason}, nil
}
