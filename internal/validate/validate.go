// Package validate contains the pure field checks shared by every
// endpoint. Each check returns nil or an error whose message is safe to
// return to the client verbatim.
package validate

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/korero-app/korero-backend/internal/entities"
)

// Field limits.
const (
	DisplayNameMinLength = 2
	DisplayNameMaxLength = 20
	BioMaxLength         = 500
	PostContentMaxLength = 280
	CommentMaxLength     = 200
)

// DisplayName requires a trimmed name of 2-20 characters.
func DisplayName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("display_name is required")
	}
	// Limits count characters, not bytes, so multibyte names such as
	// macronned Māori text get the full window.
	if n := utf8.RuneCountInString(name); n < DisplayNameMinLength {
		return fmt.Errorf("display_name must be at least %d characters", DisplayNameMinLength)
	} else if n > DisplayNameMaxLength {
		return fmt.Errorf("display_name must not exceed %d characters", DisplayNameMaxLength)
	}
	return nil
}

// Bio is optional but capped at 500 characters.
func Bio(bio string) error {
	if utf8.RuneCountInString(bio) > BioMaxLength {
		return fmt.Errorf("bio must not exceed %d characters", BioMaxLength)
	}
	return nil
}

// PoliticalAlignment must be one of the known values or empty.
func PoliticalAlignment(alignment string) error {
	for _, v := range entities.PoliticalAlignments {
		if alignment == v {
			return nil
		}
	}
	var opts []string
	for _, v := range entities.PoliticalAlignments {
		if v != "" {
			opts = append(opts, v)
		}
	}
	return fmt.Errorf("political_alignment must be %s", strings.Join(opts, ", "))
}

// PostContent requires non-blank content of at most 280 characters.
func PostContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("Content is required")
	}
	if utf8.RuneCountInString(content) > PostContentMaxLength {
		return fmt.Errorf("Content must not exceed %d characters", PostContentMaxLength)
	}
	return nil
}

// CommentContent requires non-blank content of at most 200 characters.
func CommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return errors.New("Comment content is required")
	}
	if utf8.RuneCountInString(content) > CommentMaxLength {
		return fmt.Errorf("Comment must not exceed %d characters", CommentMaxLength)
	}
	return nil
}

// Profile runs the profile field checks in a fixed order and returns the
// first failure. bio and alignment are nil when the request omitted the
// field, which is legal on partial updates but still validated when
// supplied. forUpdate skips the display_name requiredness check so that an
// update may leave the name untouched.
func Profile(displayName string, bio, alignment *string, forUpdate bool) error {
	if !(forUpdate && strings.TrimSpace(displayName) == "") {
		if err := DisplayName(displayName); err != nil {
			return err
		}
	}
	if bio != nil {
		if err := Bio(*bio); err != nil {
			return err
		}
	}
	if alignment != nil {
		if err := PoliticalAlignment(*alignment); err != nil {
			return err
		}
	}
	return nil
}
