package model

import "encoding/json"

// AnalysisDocument is a loaded BookNLP artifact.
// Characters are kept as raw records in source order; they are decoded
// lazily by the normalizer so one bad record cannot fail the whole load.
type AnalysisDocument struct {
	Characters []json.RawMessage `json:"characters"`
}

// Len returns the number of raw character records
func (d *AnalysisDocument) Len() int {
	if d == nil {
		return 0
	}
	return len(d.Characters)
}

// Character is the normalized profile of one coreference cluster
type Character struct {
	ID          int               `json:"id"`
	Count       int               `json:"count"`  // Total mentions across all mention kinds
	Gender      string            `json:"gender"` // Canonical label, "Unknown" when absent
	Mentions    MentionClusters   `json:"mentions"`
	Agent       []RoleAttestation `json:"agent"`   // Actions performed
	Patient     []RoleAttestation `json:"patient"` // Actions received
	Possessions []RoleAttestation `json:"poss"`
	Modifiers   []RoleAttestation `json:"mod"`
}

// MentionClusters groups mention attestations by kind
type MentionClusters struct {
	Proper  []MentionAttestation `json:"proper"`
	Common  []MentionAttestation `json:"common"`
	Pronoun []MentionAttestation `json:"pronoun"`
}

// MentionAttestation is one distinct surface form used to refer to a character
type MentionAttestation struct {
	Name  string `json:"n"`
	Count int    `json:"c"`
}

// RoleAttestation is one word attached to a character in a grammatical role
type RoleAttestation struct {
	Word string `json:"w"`
}

// MentionKind names a mention collection
type MentionKind string

const (
	MentionProper  MentionKind = "proper"
	MentionCommon  MentionKind = "common"
	MentionPronoun MentionKind = "pronoun"
)

// MentionKinds lists mention kinds in report order
var MentionKinds = []MentionKind{MentionProper, MentionCommon, MentionPronoun}

// RoleKind names a role collection by its wire key
type RoleKind string

const (
	RoleAgent      RoleKind = "agent"
	RolePatient    RoleKind = "patient"
	RolePossession RoleKind = "poss"
	RoleModifier   RoleKind = "mod"
)

// RoleKinds lists role kinds in report order
var RoleKinds = []RoleKind{RoleAgent, RolePatient, RolePossession, RoleModifier}

// MentionsOf returns the collection for the given kind
func (c *Character) MentionsOf(kind MentionKind) []MentionAttestation {
	switch kind {
	case MentionProper:
		return c.Mentions.Proper
	case MentionCommon:
		return c.Mentions.Common
	case MentionPronoun:
		return c.Mentions.Pronoun
	default:
		return nil
	}
}

// RolesOf returns the collection for the given role kind
func (c *Character) RolesOf(kind RoleKind) []RoleAttestation {
	switch kind {
	case RoleAgent:
		return c.Agent
	case RolePatient:
		return c.Patient
	case RolePossession:
		return c.Possessions
	case RoleModifier:
		return c.Modifiers
	default:
		return nil
	}
}
