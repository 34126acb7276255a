package onboarding

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
)

// Profile is the typed view of the free-form answers map.
type Profile struct {
	BusinessIdea   string `mapstructure:"businessIdea" json:"businessIdea,omitempty"`
	BusinessType   string `mapstructure:"businessType" json:"businessType,omitempty"`
	BusinessName   string `mapstructure:"businessName" json:"businessName,omitempty"`
	Description    string `mapstructure:"description" json:"description,omitempty"`
	PrimaryColor   string `mapstructure:"primaryColor" json:"primaryColor,omitempty"`
	SecondaryColor string `mapstructure:"secondaryColor" json:"secondaryColor,omitempty"`
	AccentColor    string `mapstructure:"accentColor" json:"accentColor,omitempty"`
	HeadingFont    string `mapstructure:"headingFont" json:"headingFont,omitempty"`
	BodyFont       string `mapstructure:"bodyFont" json:"bodyFont,omitempty"`
	Tagline        string `mapstructure:"tagline" json:"tagline,omitempty"`

	// Extra keeps answers with no typed field.
	Extra map[string]any `mapstructure:",remain" json:"extra,omitempty"`
}

// DecodeProfile converts answers into a Profile. Scalars are coerced to
// strings; keys not named by Profile land in Extra.
func DecodeProfile(answers map[string]any) (Profile, error) {
	var p Profile
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           &p,
	})
	if err != nil {
		return Profile{}, err
	}
	if err := dec.Decode(answers); err != nil {
		return Profile{}, fmt.Errorf("decode profile: %w", err)
	}
	p.trim()
	return p, nil
}

func (p *Profile) trim() {
	for _, f := range []*string{
		&p.BusinessIdea, &p.BusinessType, &p.BusinessName, &p.Description,
		&p.PrimaryColor, &p.SecondaryColor, &p.AccentColor,
		&p.HeadingFont, &p.BodyFont, &p.Tagline,
	} {
		*f = strings.TrimSpace(*f)
	}
}
