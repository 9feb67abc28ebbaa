package ai

import (
	"fmt"
	"strings"
)

// Hashtag bounds for generated social posts.
const (
	MinHashtags = 5
	MaxHashtags = 20
)

// EmailDraft is a generated marketing email.
type EmailDraft struct {
	Subject   string `json:"subject"`
	Preheader string `json:"preheader"`
	Content   string `json:"content"`
}

// Product describes the item a social post promotes.
type Product struct {
	Name        string  `json:"name" validate:"required,min=1"`
	Description string  `json:"description" validate:"required,min=1"`
	Price       float64 `json:"price" validate:"gt=0"`
	Category    string  `json:"category"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

// SocialPost is a generated caption and its hashtags, stored without the leading '#'.
type SocialPost struct {
	Caption  string   `json:"caption"`
	Hashtags []string `json:"hashtags"`
}

// BlogDraft is a generated markdown article.
type BlogDraft struct {
	Title   string   `json:"title"`
	Excerpt string   `json:"excerpt"`
	Content string   `json:"content"`
	Tags    []string `json:"tags"`
}

// EmailPrompt builds the prompt for a marketing email about topic.
func EmailPrompt(topic, campaignType string) string {
	if campaignType == "" {
		campaignType = "newsletter"
	}
	return fmt.Sprintf(`You are an expert email marketing copywriter for La Pesqueria Outfitters, a fishing gear and apparel brand based in McAllen, Texas.
Write a marketing email.

Topic/Goal: %s
Campaign Type: %s

Return ONLY a strictly valid JSON object with these fields:
{
  "subject": "A catchy subject line (emojis are fine)",
  "preheader": "Preview text, max 100 characters",
  "content": "The email body as HTML using <h2> and <p> tags with inline styles. Include a greeting, the main message and a call to action."
}
Do not wrap the JSON in markdown.`, topic, campaignType)
}

// ParseEmail decodes an EmailDraft and checks that every field is present.
func ParseEmail(raw string) (*EmailDraft, error) {
	var d EmailDraft
	if err := DecodeJSON(raw, &d); err != nil {
		return nil, err
	}
	if d.Subject == "" || d.Content == "" {
		return nil, fmt.Errorf("%w: missing subject or content", ErrInvalidOutput)
	}
	if r := []rune(d.Preheader); len(r) > 100 {
		d.Preheader = string(r[:100])
	}
	return &d, nil
}

// SocialPostPrompt builds the prompt for a social caption promoting p on platform.
func SocialPostPrompt(p Product, platform, tone string) string {
	length := "Make it engaging and story-driven."
	if platform == "twitter" {
		length = "Keep it under 280 characters."
	}
	return fmt.Sprintf(`You are a social media expert for La Pesqueria Outfitters, a fishing apparel and outdoor gear business.
Create an engaging %[1]s post for the product listed below.

PRODUCT DETAILS:
- Name: %[2]s
- Description: %[3]s
- Price: $%.2[4]f
- Category: %[5]s

PLATFORM: %[1]s
TONE: %[6]s

GUIDELINES:
- Highlight quality fishing apparel and outdoor gear for anglers.
- %[7]s
- Include a clear call-to-action to "Shop now".
- Focus on the fishing lifestyle and Texas Gulf Coast fishing.

Return ONLY a strictly valid JSON object, no markdown:
{
  "caption": "Your compelling post caption",
  "hashtags": ["10-15", "relevant", "hashtags", "without", "#"]
}`, platform, p.Name, p.Description, p.Price, p.Category, tone, length)
}

// ParseSocialPost decodes a SocialPost and enforces caption and hashtag bounds.
func ParseSocialPost(raw string) (*SocialPost, error) {
	var sp SocialPost
	if err := DecodeJSON(raw, &sp); err != nil {
		return nil, err
	}
	sp.Caption = strings.TrimSpace(sp.Caption)
	if len(sp.Caption) < 10 {
		return nil, fmt.Errorf("%w: caption too short", ErrInvalidOutput)
	}
	sp.Hashtags = NormalizeHashtags(sp.Hashtags)
	if len(sp.Hashtags) < MinHashtags || len(sp.Hashtags) > MaxHashtags {
		return nil, fmt.Errorf("%w: expected %d-%d hashtags, got %d", ErrInvalidOutput, MinHashtags, MaxHashtags, len(sp.Hashtags))
	}
	return &sp, nil
}

// NormalizeHashtags strips leading '#', spaces and duplicates, keeping order.
func NormalizeHashtags(tags []string) []string {
	seen := make(map[string]bool, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimLeft(strings.TrimSpace(t), "#")
		t = strings.ReplaceAll(t, " ", "")
		if t == "" || seen[strings.ToLower(t)] {
			continue
		}
		seen[strings.ToLower(t)] = true
		out = append(out, t)
	}
	return out
}

var fallbackHashtags = []string{
	"fishinggear",
	"fishingapparel",
	"texasfishing",
	"gulfcoastfishing",
	"outdoorgear",
	"anglerlife",
	"fishinglife",
	"catchoftheday",
	"tightlines",
}

// FallbackSocialPost is the fixed caption used when generation fails.
func FallbackSocialPost(p Product) *SocialPost {
	caption := fmt.Sprintf("🎣 %s 🎣\n\n%s\n\n🌊 Quality gear for Texas anglers\n📍 Based in McAllen, TX\n\nShop now! Link in bio 👆", p.Name, p.Description)
	tags := make([]string, len(fallbackHashtags))
	copy(tags, fallbackHashtags)
	return &SocialPost{Caption: caption, Hashtags: tags}
}

// BlogPrompt builds the prompt for a markdown blog article.
func BlogPrompt(topic string, keywords []string, tone string) string {
	if tone == "" {
		tone = "friendly and knowledgeable"
	}
	kw := "none"
	if len(keywords) > 0 {
		kw = strings.Join(keywords, ", ")
	}
	return fmt.Sprintf(`You are a content writer for La Pesqueria Outfitters, a fishing apparel brand on the Texas Gulf Coast that donates part of every sale to ocean conservation.
Write a blog article.

Topic: %s
Keywords to include: %s
Tone: %s

Return ONLY a strictly valid JSON object, no markdown fences around it:
{
  "title": "Article title",
  "excerpt": "One or two sentence summary",
  "content": "The full article in markdown with ## headings",
  "tags": ["lowercase", "tags"]
}`, topic, kw, tone)
}

// ParseBlog decodes a BlogDraft.
func ParseBlog(raw string) (*BlogDraft, error) {
	var d BlogDraft
	if err := DecodeJSON(raw, &d); err != nil {
		return nil, err
	}
	if d.Title == "" || d.Content == "" {
		return nil, fmt.Errorf("%w: missing title or content", ErrInvalidOutput)
	}
	return &d, nil
}
