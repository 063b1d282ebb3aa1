package registry

import (
	"fmt"
	"regexp"
	"slices"

	"cemsreg/catalog"
)

// Severity distinguishes blocking violations from guideline warnings.
type Severity string

const (
	// SeverityError blocks the submission.
	SeverityError Severity = "error"
	// SeverityWarning is reported to the user but does not block.
	SeverityWarning Severity = "warning"
)

// Violation is one violated constraint of a submitted form.
type Violation struct {
	Field    string   `json:"field"`
	Rule     string   `json:"rule"`
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

// Violations is the result of validating one form. Validation never mutates
// the input; it only reports.
type Violations []Violation

// Blocking reports whether any violation has error severity.
func (v Violations) Blocking() bool {
	for _, viol := range v {
		if viol.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Warnings returns the non-blocking subset.
func (v Violations) Warnings() Violations {
	var out Violations
	for _, viol := range v {
		if viol.Severity == SeverityWarning {
			out = append(out, viol)
		}
	}
	return out
}

func (v *Violations) add(field, rule, message string) {
	*v = append(*v, Violation{Field: field, Rule: rule, Message: message, Severity: SeverityError})
}

func (v *Violations) warn(field, rule, message string) {
	*v = append(*v, Violation{Field: field, Rule: rule, Message: message, Severity: SeverityWarning})
}

var emailRe = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)

// ValidateRegistration checks the industry registration form.
func ValidateRegistration(in *RegistrationInput) Violations {
	var v Violations

	required := []struct{ field, value string }{
		{"state_ocmms_id", in.StateOCMMSID},
		{"name", in.Name},
		{"address", in.Address},
		{"production_capacity", in.ProductionCapacity},
		{"environment_head", in.EnvironmentHead},
		{"instrument_head", in.InstrumentHead},
		{"cems_contact", in.CEMSContact},
		{"password", in.Password},
	}
	for _, f := range required {
		if f.value == "" {
			v.add(f.field, "required", f.field+" is required")
		}
	}

	if !catalog.ValidCategory(in.Category) {
		v.add("category", "enum", fmt.Sprintf("unknown industry category %q", in.Category))
	}
	if !catalog.ValidState(in.State) {
		v.add("state", "enum", fmt.Sprintf("state %q is not covered by this portal", in.State))
	} else if !catalog.ValidDistrict(in.State, in.District) {
		v.add("district", "enum", fmt.Sprintf("%q is not a district of %s", in.District, in.State))
	}
	if in.NumStacks < 1 {
		v.add("num_stacks", "min", "number of stacks must be at least 1")
	}
	if in.Email == "" {
		v.add("email", "required", "email is required")
	} else if !emailRe.MatchString(in.Email) {
		v.add("email", "format", "invalid email address")
	}

	return v
}

// ValidateStack checks the stack submission form, including the
// shape-conditional geometry, the placement-conditional parameter sub-sets,
// and the numeric ordering constraints.
func ValidateStack(in *StackInput) Violations {
	var v Violations

	if in.ProcessAttached == "" {
		v.add("process_attached", "required", "process attached is required")
	}
	if in.APCDDetails == "" {
		v.add("apcd_details", "required", "APCD details are required")
	}
	if in.Material == "" {
		v.add("material", "required", "construction material is required")
	}

	if !catalog.InEnvelope(in.Latitude, in.Longitude) {
		v.add("geolocation", "envelope", fmt.Sprintf(
			"coordinates must lie within latitude %.8f..%.8f and longitude %.8f..%.8f",
			catalog.LatMin, catalog.LatMax, catalog.LonMin, catalog.LonMax))
	}

	if !catalog.ValidCondition(in.Condition) {
		v.add("condition", "enum", fmt.Sprintf("unknown stack condition %q", in.Condition))
	}

	switch {
	case !catalog.ValidShape(in.Shape):
		v.add("shape", "enum", fmt.Sprintf("unknown stack shape %q", in.Shape))
	case in.Shape == "Circular":
		if in.Diameter == nil || *in.Diameter <= 0 {
			v.add("diameter", "shape", "circular stacks require a positive diameter")
		}
	default: // Rectangular
		if in.Length == nil || *in.Length <= 0 {
			v.add("length", "shape", "rectangular stacks require a positive length")
		}
		if in.Width == nil || *in.Width <= 0 {
			v.add("width", "shape", "rectangular stacks require a positive width")
		}
	}

	if in.Height <= 0 {
		v.add("height", "min", "stack height must be positive")
	}
	if in.PlatformHeight <= 0 {
		v.add("platform_height", "min", "platform height must be positive")
	}
	if in.Height > 0 && in.PlatformHeight > 0 && in.PlatformHeight >= in.Height {
		v.add("platform_height", "ordering", "platform height must be below stack height")
	}

	if in.PlatformApproachable {
		if !catalog.ValidApproachMedium(in.ApproachMedium) {
			v.add("approach_medium", "conditional", "an approach medium is required when the platform is approachable")
		}
	} else {
		v.warn("platform_approachable", "guideline", "platform should be approachable per CPCB guidelines")
	}

	switch in.CEMSPlacement {
	case "Both":
		if len(in.StackParams) == 0 {
			v.add("stack_params", "placement", "stack-side parameters are required when CEMS is installed on both")
		}
		if len(in.DuctParams) == 0 {
			v.add("duct_params", "placement", "duct-side parameters are required when CEMS is installed on both")
		}
	case "Duct":
		if len(in.DuctParams) == 0 {
			v.add("duct_params", "placement", "duct-side parameters are required for a duct installation")
		}
	case "Stack":
		// No side-specific sub-sets required.
	default:
		v.add("cems_placement", "enum", fmt.Sprintf("unknown CEMS placement %q", in.CEMSPlacement))
	}

	if in.CEMSPlacement == "Duct" || in.CEMSPlacement == "Both" {
		if in.ManualPortInstalled == nil {
			v.add("manual_port_installed", "conditional", "manual monitoring port question must be answered for duct installations")
		} else if !*in.ManualPortInstalled {
			v.warn("manual_port_installed", "guideline", "a manual monitoring port should be installed in the duct per CPCB guidelines")
		}
	}

	if !in.CEMSBelowManual {
		v.warn("cems_below_manual", "guideline", "CEMS installation point should be at least 500mm below the manual monitoring point per CPCB guidelines")
	}

	if len(in.Parameters) == 0 {
		v.add("parameters", "required", "select at least one monitored parameter")
	}
	for _, set := range []struct {
		field  string
		params []string
	}{
		{"parameters", in.Parameters},
		{"stack_params", in.StackParams},
		{"duct_params", in.DuctParams},
	} {
		for _, p := range set.params {
			if !catalog.ValidParameter(p) {
				v.add(set.field, "enum", fmt.Sprintf("unknown parameter %q", p))
			}
		}
	}

	return v
}

// ValidateInstrument checks the CEMS instrument form against the enclosing
// stack's declared parameter set.
func ValidateInstrument(in *InstrumentInput, declaredParams []string) Violations {
	var v Violations

	if in.Parameter == "" {
		v.add("parameter", "required", "parameter is required")
	} else if !slices.Contains(declaredParams, in.Parameter) {
		v.add("parameter", "membership", fmt.Sprintf("parameter %q is not declared for this stack", in.Parameter))
	}

	required := []struct{ field, value string }{
		{"make", in.Make},
		{"model", in.Model},
		{"serial_number", in.SerialNumber},
		{"technology", in.Technology},
	}
	for _, f := range required {
		if f.value == "" {
			v.add(f.field, "required", f.field+" is required")
		}
	}

	if in.EmissionLimit <= 0 {
		v.add("emission_limit", "min", "emission limit must be positive")
	}
	if in.RangeLow >= in.RangeHigh {
		v.add("measuring_range", "ordering", "measuring range low must be strictly below high")
	}

	if in.Certified && in.CertificationAgency == "" {
		v.add("certification_agency", "conditional", "certification agency is required for certified instruments")
	}

	if !catalog.ValidProtocol(in.CommunicationProtocol) {
		v.add("communication_protocol", "enum", fmt.Sprintf("unknown communication protocol %q", in.CommunicationProtocol))
	}
	if !catalog.ValidMeasurementMethod(in.MeasurementMethod) {
		v.add("measurement_method", "enum", fmt.Sprintf("unknown measurement method %q", in.MeasurementMethod))
	}

	if in.BSPCBConnected && in.BSPCBURL == "" {
		v.add("bspcb_url", "conditional", "BSPCB URL is required when connected to BSPCB")
	}
	if in.CPCBConnected && in.CPCBURL == "" {
		v.add("cpcb_url", "conditional", "CPCB URL is required when connected to CPCB")
	}

	return v
}
