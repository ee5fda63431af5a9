package settlement

import (
	"fmt"
	"regexp"

	"github.com/tunde/vend-settlement/pkg/models"
)

// kindSpec is the per-kind capability record: how to validate a delivery
// target and how to word notifications. One generic engine parameterized
// by this table replaces a copy of the purchase flow per kind.
type kindSpec struct {
	label         string
	targetName    string
	targetPattern *regexp.Regexp
}

var (
	phonePattern     = regexp.MustCompile(`^0\d{10}$`)
	meterPattern     = regexp.MustCompile(`^\d{10,13}$`)
	smartcardPattern = regexp.MustCompile(`^\d{10}$`)
	candidatePattern = regexp.MustCompile(`^0\d{10}$`)
)

var kindSpecs = map[models.PurchaseKind]kindSpec{
	models.KindData:        {label: "data bundle", targetName: "phone number", targetPattern: phonePattern},
	models.KindAirtime:     {label: "airtime top-up", targetName: "phone number", targetPattern: phonePattern},
	models.KindElectricity: {label: "electricity token", targetName: "meter number", targetPattern: meterPattern},
	models.KindTV:          {label: "TV subscription", targetName: "smartcard number", targetPattern: smartcardPattern},
	models.KindExam:        {label: "exam credential", targetName: "phone number", targetPattern: candidatePattern},
}

// validateTarget checks the delivery target against the kind-specific
// syntax. Returns a ValidationError on any mismatch.
func validateTarget(kind models.PurchaseKind, target string) error {
	spec, ok := kindSpecs[kind]
	if !ok {
		return &ValidationError{Message: fmt.Sprintf("unknown purchase kind %q", kind)}
	}
	if !spec.targetPattern.MatchString(target) {
		return &ValidationError{Message: fmt.Sprintf("%q is not a valid %s", target, spec.targetName)}
	}
	return nil
}
