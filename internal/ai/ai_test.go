package ai

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripFences("  {\"a\":1} "))
}

func TestParseEmail(t *testing.T) {
	raw := "```json\n{\"subject\":\"🎣 Big sale\",\"preheader\":\"Save now\",\"content\":\"<h2>Hi</h2><p>Shop</p>\"}\n```"
	d, err := ParseEmail(raw)
	require.NoError(t, err)
	assert.Equal(t, "🎣 Big sale", d.Subject)
	assert.Equal(t, "Save now", d.Preheader)
	assert.Contains(t, d.Content, "<h2>")

	_, err = ParseEmail("Sorry, I cannot help with that.")
	assert.True(t, errors.Is(err, ErrInvalidOutput))

	_, err = ParseEmail(`{"subject":"","content":""}`)
	assert.True(t, errors.Is(err, ErrInvalidOutput))
}

func TestParseSocialPostNormalizesHashtags(t *testing.T) {
	raw := `Here you go: {"caption":"Hit the flats in style this weekend!","hashtags":["#fishing","tight lines","Fishing","redfish","gulfcoast","texas"]}`
	sp, err := ParseSocialPost(raw)
	require.NoError(t, err)
	assert.Equal(t, []string{"fishing", "tightlines", "redfish", "gulfcoast", "texas"}, sp.Hashtags)
}

func TestParseSocialPostRejectsTooFewHashtags(t *testing.T) {
	_, err := ParseSocialPost(`{"caption":"A long enough caption","hashtags":["a","b"]}`)
	assert.True(t, errors.Is(err, ErrInvalidOutput))
}

func TestFallbackSocialPost(t *testing.T) {
	p := Product{Name: "Redfish Tee", Description: "Soft cotton tee", Price: 25}
	sp := FallbackSocialPost(p)
	assert.Contains(t, sp.Caption, "Redfish Tee")
	assert.Contains(t, sp.Caption, "Soft cotton tee")
	assert.Contains(t, sp.Hashtags, "fishinggear")
	assert.GreaterOrEqual(t, len(sp.Hashtags), MinHashtags)

	sp.Hashtags[0] = "changed"
	assert.Equal(t, "fishinggear", FallbackSocialPost(p).Hashtags[0])
}

func TestPromptsCarryInputs(t *testing.T) {
	p := SocialPostPrompt(Product{Name: "Hat", Description: "Wide brim", Price: 19.5, Category: "hats"}, "twitter", "casual")
	assert.Contains(t, p, "$19.50")
	assert.Contains(t, p, "under 280 characters")
	assert.Contains(t, p, "TONE: casual")

	e := EmailPrompt("Summer sale", "promotional")
	assert.Contains(t, e, "Topic/Goal: Summer sale")
	assert.Contains(t, e, "Campaign Type: promotional")

	b := BlogPrompt("Wade fishing", []string{"redfish", "laguna madre"}, "")
	assert.Contains(t, b, "redfish, laguna madre")
}

func TestParseBlog(t *testing.T) {
	d, err := ParseBlog(`{"title":"Wade Fishing 101","excerpt":"Tips","content":"## Start\nGo early.","tags":["wade"]}`)
	require.NoError(t, err)
	assert.Equal(t, "Wade Fishing 101", d.Title)

	_, err = ParseBlog(`{"title":"x"}`)
	assert.Error(t, err)
}
