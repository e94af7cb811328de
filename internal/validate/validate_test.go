package validate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDisplayName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr string
	}{
		{name: "valid", input: "Aroha"},
		{name: "minimum length", input: "Jo"},
		{name: "maximum length", input: strings.Repeat("a", 20)},
		{name: "empty", input: "", wantErr: "display_name is required"},
		{name: "whitespace only", input: "   ", wantErr: "display_name is required"},
		{name: "too short", input: "J", wantErr: "display_name must be at least 2 characters"},
		{name: "too long", input: strings.Repeat("a", 21), wantErr: "display_name must not exceed 20 characters"},
		{name: "macrons at maximum length", input: strings.Repeat("ā", 20)},
		{name: "macrons over maximum length", input: strings.Repeat("ā", 21), wantErr: "display_name must not exceed 20 characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := DisplayName(tt.input)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.wantErr)
			}
		})
	}
}

func TestBio(t *testing.T) {
	assert.NoError(t, Bio(""))
	assert.NoError(t, Bio(strings.Repeat("b", 500)))
	assert.NoError(t, Bio(strings.Repeat("ō", 500)))
	assert.EqualError(t, Bio(strings.Repeat("b", 501)), "bio must not exceed 500 characters")
}

func TestPoliticalAlignment(t *testing.T) {
	for _, v := range []string{"National", "Labour", "Independent", ""} {
		assert.NoError(t, PoliticalAlignment(v), "alignment %q", v)
	}
	assert.EqualError(t, PoliticalAlignment("Green"),
		"political_alignment must be National, Labour, Independent")
	assert.Error(t, PoliticalAlignment("national")) // case sensitive
}

func TestPostContent(t *testing.T) {
	assert.NoError(t, PostContent("kia ora"))
	assert.NoError(t, PostContent(strings.Repeat("x", 280)))
	// Limits are character counts, so a post of 280 multibyte runes fits.
	assert.NoError(t, PostContent(strings.Repeat("ā", 280)))
	assert.EqualError(t, PostContent(strings.Repeat("ā", 281)), "Content must not exceed 280 characters")
	assert.EqualError(t, PostContent(""), "Content is required")
	assert.EqualError(t, PostContent("  \n "), "Content is required")
	assert.EqualError(t, PostContent(strings.Repeat("x", 281)), "Content must not exceed 280 characters")
}

func TestCommentContent(t *testing.T) {
	assert.NoError(t, CommentContent("nice"))
	assert.NoError(t, CommentContent(strings.Repeat("x", 200)))
	assert.NoError(t, CommentContent(strings.Repeat("ē", 200)))
	assert.EqualError(t, CommentContent(""), "Comment content is required")
	assert.EqualError(t, CommentContent(strings.Repeat("ē", 201)), "Comment must not exceed 200 characters")
	assert.EqualError(t, CommentContent(strings.Repeat("x", 201)), "Comment must not exceed 200 characters")
}

func TestProfile(t *testing.T) {
	bio := strings.Repeat("b", 501)
	alignment := "Anarchist"

	// Create path requires a display name
	assert.EqualError(t, Profile("", nil, nil, false), "display_name is required")

	// Update path allows a blank name but still checks supplied fields
	assert.NoError(t, Profile("", nil, nil, true))
	assert.EqualError(t, Profile("", &bio, nil, true), "bio must not exceed 500 characters")
	assert.EqualError(t, Profile("", nil, &alignment, true),
		"political_alignment must be National, Labour, Independent")

	// A non-blank name on update is validated in full
	assert.EqualError(t, Profile("x", nil, nil, true), "display_name must be at least 2 characters")
}
