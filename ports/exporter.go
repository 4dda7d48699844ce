package ports

import (
	"io"

	"claimsight/domain/scoring"
)

// ShortlistExporter serializes a ranked shortlist into a flat tabular form,
// one row per flagged record.
type ShortlistExporter interface {
	Write(w io.Writer, shortlist []scoring.RiskScore) error
}
