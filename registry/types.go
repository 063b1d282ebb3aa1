// Package registry implements the domain core of the CEMS registration
// portal: facility, stack and instrument records, the validation rules that
// gate their submission, and the wizard progress derived from row counts.
package registry

// RegistrationInput is the full industry registration form: the facility
// details plus the representative's login credentials.
type RegistrationInput struct {
	Category           string `json:"category"`
	StateOCMMSID       string `json:"state_ocmms_id"`
	Name               string `json:"name"`
	Address            string `json:"address"`
	State              string `json:"state"`
	District           string `json:"district"`
	ProductionCapacity string `json:"production_capacity"`
	NumStacks          int    `json:"num_stacks"`
	EnvironmentHead    string `json:"environment_head"`
	InstrumentHead     string `json:"instrument_head"`
	CEMSContact        string `json:"cems_contact"`
	Email              string `json:"email"`
	Password           string `json:"password"`
}

// Industry is a registered facility, the top-level owned aggregate.
type Industry struct {
	ID                 IndustryID `json:"industry_id"`
	UserID             UserID     `json:"user_id"`
	Category           string     `json:"category"`
	StateOCMMSID       string     `json:"state_ocmms_id"`
	Name               string     `json:"name"`
	Address            string     `json:"address"`
	State              string     `json:"state"`
	District           string     `json:"district"`
	ProductionCapacity string     `json:"production_capacity"`
	NumStacks          int        `json:"num_stacks"`
	EnvironmentHead    string     `json:"environment_head"`
	InstrumentHead     string     `json:"instrument_head"`
	CEMSContact        string     `json:"cems_contact"`
	ContactEmail       string     `json:"contact_email"`
	CreatedAt          int64      `json:"created_at"`
}

// StackInput is the stack submission form. Geometry fields are pointers so
// that "not provided" is distinguishable from zero; only the fields matching
// the shape are persisted.
type StackInput struct {
	ProcessAttached string `json:"process_attached"`
	APCDDetails     string `json:"apcd_details"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Condition string   `json:"condition"` // Wet | Dry
	Shape     string   `json:"shape"`     // Circular | Rectangular
	Diameter  *float64 `json:"diameter,omitempty"`
	Length    *float64 `json:"length,omitempty"`
	Width     *float64 `json:"width,omitempty"`

	Material       string  `json:"material"`
	Height         float64 `json:"height"`
	PlatformHeight float64 `json:"platform_height"`

	PlatformApproachable bool   `json:"platform_approachable"`
	ApproachMedium       string `json:"approach_medium,omitempty"` // Ladder | Lift | Staircase

	CEMSPlacement string   `json:"cems_placement"` // Stack | Duct | Both
	StackParams   []string `json:"stack_params,omitempty"`
	DuctParams    []string `json:"duct_params,omitempty"`

	FollowsFormula      bool  `json:"follows_formula"`
	ManualPortInstalled *bool `json:"manual_port_installed,omitempty"` // required for Duct/Both
	CEMSBelowManual     bool  `json:"cems_below_manual"`

	Parameters []string `json:"parameters"` // monitored parameter set
}

// Stack is a persisted emission stack.
type Stack struct {
	ID         StackID    `json:"stack_id"`
	IndustryID IndustryID `json:"industry_id"`

	ProcessAttached string `json:"process_attached"`
	APCDDetails     string `json:"apcd_details"`

	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	Condition string   `json:"condition"`
	Shape     string   `json:"shape"`
	Diameter  *float64 `json:"diameter,omitempty"`
	Length    *float64 `json:"length,omitempty"`
	Width     *float64 `json:"width,omitempty"`

	Material       string  `json:"material"`
	Height         float64 `json:"height"`
	PlatformHeight float64 `json:"platform_height"`

	PlatformApproachable bool   `json:"platform_approachable"`
	ApproachMedium       string `json:"approach_medium,omitempty"`

	CEMSPlacement string   `json:"cems_placement"`
	StackParams   []string `json:"stack_params,omitempty"`
	DuctParams    []string `json:"duct_params,omitempty"`

	FollowsFormula      bool  `json:"follows_formula"`
	ManualPortInstalled *bool `json:"manual_port_installed,omitempty"`
	CEMSBelowManual     bool  `json:"cems_below_manual"`

	Parameters []string `json:"parameters"`
	CreatedAt  int64    `json:"created_at"`
}

// InstrumentInput is the CEMS instrument submission form for one monitored
// parameter of one stack.
type InstrumentInput struct {
	Parameter    string `json:"parameter"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`

	EmissionLimit float64 `json:"emission_limit"`
	RangeLow      float64 `json:"measuring_range_low"`
	RangeHigh     float64 `json:"measuring_range_high"`

	Certified           bool   `json:"certified"`
	CertificationAgency string `json:"certification_agency,omitempty"`

	CommunicationProtocol string `json:"communication_protocol"` // 4-20 mA | RS-485 | RS-232
	MeasurementMethod     string `json:"measurement_method"`     // In-situ | Extractive
	Technology            string `json:"technology"`

	BSPCBConnected bool   `json:"bspcb_connected"`
	BSPCBURL       string `json:"bspcb_url,omitempty"`
	CPCBConnected  bool   `json:"cpcb_connected"`
	CPCBURL        string `json:"cpcb_url,omitempty"`
}

// Instrument is a persisted CEMS instrument record.
type Instrument struct {
	ID      InstrumentID `json:"instrument_id"`
	StackID StackID      `json:"stack_id"`

	Parameter    string `json:"parameter"`
	Make         string `json:"make"`
	Model        string `json:"model"`
	SerialNumber string `json:"serial_number"`

	EmissionLimit float64 `json:"emission_limit"`
	RangeLow      float64 `json:"measuring_range_low"`
	RangeHigh     float64 `json:"measuring_range_high"`

	Certified           bool   `json:"certified"`
	CertificationAgency string `json:"certification_agency,omitempty"`

	CommunicationProtocol string `json:"communication_protocol"`
	MeasurementMethod     string `json:"measurement_method"`
	Technology            string `json:"technology"`

	BSPCBConnected bool   `json:"bspcb_connected"`
	BSPCBURL       string `json:"bspcb_url,omitempty"`
	CPCBConnected  bool   `json:"cpcb_connected"`
	CPCBURL        string `json:"cpcb_url,omitempty"`

	CreatedAt int64 `json:"created_at"`
}

// StackDetail is a stack with its instruments, for dashboard views.
type StackDetail struct {
	Stack
	Instruments []Instrument `json:"instruments"`
}

// IndustryDetail is the full nested view: industry → stacks → instruments.
type IndustryDetail struct {
	Industry
	Stacks []StackDetail `json:"stacks"`
}

// IndustrySummary is one row of the administrative listing.
type IndustrySummary struct {
	ID              IndustryID `json:"industry_id"`
	Name            string     `json:"name"`
	Category        string     `json:"category"`
	State           string     `json:"state"`
	District        string     `json:"district"`
	NumStacks       int        `json:"num_stacks"`
	CompletedStacks int        `json:"completed_stacks"`
	ContactEmail    string     `json:"contact_email"`
}
