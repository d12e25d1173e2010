package domain

import (
	"strings"

	apperrors "github.com/spec-kit/user-migration/pkg/util"
)

// SourceSystem tags the legacy store a user was extracted from.
type SourceSystem string

const (
	SourceClinical SourceSystem = "clinical-records-system"
	SourceERP      SourceSystem = "erp-system"
)

// PrimarySource wins username collisions whenever it is present in a group.
const PrimarySource = SourceClinical

// AttrSourceSystem is the attribute key carrying the SourceSystem tag.
const AttrSourceSystem = "source_system"

// SourceMode selects which sources a run extracts.
type SourceMode string

const (
	ModeClinical SourceMode = "clinical"
	ModeERP      SourceMode = "erp"
	ModeAll      SourceMode = "all"
)

// AllSources lists every known source in concatenation order.
var AllSources = []SourceSystem{SourceClinical, SourceERP}

// ParseSourceMode accepts a mode name or a full source system tag.
func ParseSourceMode(raw string) (SourceMode, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case string(ModeClinical), string(SourceClinical):
		return ModeClinical, nil
	case string(ModeERP), string(SourceERP):
		return ModeERP, nil
	case string(ModeAll):
		return ModeAll, nil
	}
	return "", apperrors.NewConfigError("unsupported source mode", map[string]any{"mode": raw})
}

// Sources returns the systems a mode extracts, in concatenation order.
func (m SourceMode) Sources() ([]SourceSystem, error) {
	switch m {
	case ModeClinical:
		return []SourceSystem{SourceClinical}, nil
	case ModeERP:
		return []SourceSystem{SourceERP}, nil
	case ModeAll:
		return append([]SourceSystem(nil), AllSources...), nil
	}
	return nil, apperrors.NewConfigError("unsupported source mode", map[string]any{"mode": string(m)})
}
