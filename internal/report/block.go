package report

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/ppiankov/charprofile/internal/model"
)

// ErrContractViolation marks a profile the normalizer should never have produced
var ErrContractViolation = errors.New("character profile contract violation")

// category is one optional line of a character block
type category struct {
	Label   string
	Values  []string
	Present bool
}

// Value joins the category values for display
func (c category) Value() string {
	return strings.Join(c.Values, ", ")
}

// block is everything the renderers need for one character.
// Presence is decided here once so renderers never inspect collections.
type block struct {
	Rank       int
	ID         int
	Count      int
	Gender     string
	Categories []category
}

// Category labels in report order
const (
	LabelProper      = "Proper names"
	LabelCommon      = "Common names"
	LabelPronoun     = "Pronouns"
	LabelAgent       = "Actions performed"
	LabelPatient     = "Actions received"
	LabelPossessions = "Possessions"
	LabelModifiers   = "Described as"
)

var mentionLabels = map[model.MentionKind]string{
	model.MentionProper:  LabelProper,
	model.MentionCommon:  LabelCommon,
	model.MentionPronoun: LabelPronoun,
}

var roleLabels = map[model.RoleKind]string{
	model.RoleAgent:      LabelAgent,
	model.RolePatient:    LabelPatient,
	model.RolePossession: LabelPossessions,
	model.RoleModifier:   LabelModifiers,
}

func checkContract(c model.Character) error {
	if c.Gender == "" {
		return fmt.Errorf("%w: character %d has no gender label", ErrContractViolation, c.ID)
	}
	if c.Count < 0 {
		return fmt.Errorf("%w: character %d has negative count %d", ErrContractViolation, c.ID, c.Count)
	}
	return nil
}

func buildBlock(rank int, c model.Character) (block, error) {
	if err := checkContract(c); err != nil {
		return block{}, err
	}

	b := block{
		Rank:       rank,
		ID:         c.ID,
		Count:      c.Count,
		Gender:     c.Gender,
		Categories: make([]category, 0, len(model.MentionKinds)+len(model.RoleKinds)),
	}

	for _, kind := range model.MentionKinds {
		mentions := c.MentionsOf(kind)
		values := make([]string, len(mentions))
		for i, m := range mentions {
			values[i] = m.Name + " (" + strconv.Itoa(m.Count) + ")"
		}
		b.Categories = append(b.Categories, category{Label: mentionLabels[kind], Values: values, Present: len(values) > 0})
	}

	for _, kind := range model.RoleKinds {
		roles := c.RolesOf(kind)
		values := make([]string, len(roles))
		for i, r := range roles {
			values[i] = r.Word
		}
		b.Categories = append(b.Categories, category{Label: roleLabels[kind], Values: values, Present: len(values) > 0})
	}

	return b, nil
}

func buildBlocks(chars []model.Character) ([]block, error) {
	blocks := make([]block, 0, len(chars))
	for i, c := range chars {
		b, err := buildBlock(i+1, c)
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, b)
	}
	return blocks, nil
}

// lookup returns the category with the given label
func (b block) lookup(label string) category {
	for _, c := range b.Categories {
		if c.Label == label {
			return c
		}
	}
	return category{Label: label}
}
