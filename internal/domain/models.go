package domain

import (
	"time"

	"github.com/goccy/go-json"
)

// Calculation kinds stored in the audit log.
const (
	KindFlatRate    = "flat_rate"
	KindLoadProfile = "load_profile"
)

// MotorConfiguration is the input of the flat-rate engine.
type MotorConfiguration struct {
	Motors               float64 `json:"motors" validate:"gt=0"`
	HPPerMotor           float64 `json:"hpPerMotor" validate:"gt=0"`
	LoadFactor           float64 `json:"loadFactor" validate:"gte=0,lte=100"`
	OperationHours       float64 `json:"operationHours" validate:"gte=0,lte=8784"`
	ElectricityRate      float64 `json:"electricityRate" validate:"gte=0"`
	DriveSavings         float64 `json:"driveSavings" validate:"gte=0,lte=100"`
	AvoidedStopHours     float64 `json:"avoidedStopHours" validate:"gte=0"`
	StopCostPerHour      float64 `json:"stopCostPerHour" validate:"gte=0"`
	CurrentMaintenance   float64 `json:"currentMaintenance" validate:"gte=0"`
	MaintenanceReduction float64 `json:"maintenanceReduction" validate:"gte=0,lte=100"`
	PackageCostPerMotor  float64 `json:"packageCostPerMotor" validate:"gte=0"`
	ProjectHorizon       float64 `json:"projectHorizon" validate:"gte=0"`
}

// FlatRateResult is the output of the flat-rate engine.
type FlatRateResult struct {
	KWPerMotor         Float `json:"kwPerMotor"`
	CurrentConsumption Float `json:"currentConsumption"`
	CurrentEnergyCost  Float `json:"currentEnergyCost"`
	EnergySavings      Float `json:"energySavings"`
	StopSavings        Float `json:"stopSavings"`
	MaintenanceSavings Float `json:"maintenanceSavings"`
	TotalAnnualSavings Float `json:"totalAnnualSavings"`
	TotalInvestment    Float `json:"totalInvestment"`
	PaybackYears       Float `json:"paybackYears"`
	AnnualROI          Float `json:"annualROI"`
	AccumulatedSavings Float `json:"accumulatedSavings"`
}

// LoadProfilePoint is one step of a duty cycle: the motor runs at Flow
// (fraction of nominal speed) for TimePercent of the annual hours.
type LoadProfilePoint struct {
	Flow        float64 `json:"flow" validate:"gt=0,lte=1"`
	TimePercent float64 `json:"timePercent" validate:"gte=0,lte=1"`
}

// LoadProfile is an ordered duty cycle, conventionally 100% down to 10% flow.
type LoadProfile []LoadProfilePoint

// LoadProfileConfiguration is the input of the load-profile engine.
type LoadProfileConfiguration struct {
	Motors      float64     `json:"cantidadMotores" validate:"gt=0"`
	HP          float64     `json:"hp" validate:"gt=0"`
	Efficiency  float64     `json:"eficiencia" validate:"gt=0,lte=1"`
	Voltage     float64     `json:"voltaje" validate:"gte=0"`
	Hours       float64     `json:"horasAnio" validate:"gte=0,lte=8784"`
	RatePerKWh  float64     `json:"costoKwhUsd" validate:"gte=0"`
	Investment  float64     `json:"inversionDriveInstalacion" validate:"gte=0"`
	LoadProfile LoadProfile `json:"loadProfile" validate:"required,min=1,dive"`
}

// LoadPointConsumption is the energy a single duty-cycle step contributes.
type LoadPointConsumption struct {
	Flow        Float `json:"flow"`
	TimePercent Float `json:"timePercent"`
	KWh         Float `json:"consumoKwh"`
}

// Payback statuses.
const (
	PaybackViable    = "viable"
	PaybackNotViable = "not_viable"
)

// Payback tells apart a real payback period from a configuration whose
// savings never recover the investment.
type Payback struct {
	Status string `json:"status"`
	Years  Float  `json:"years"`
	Reason string `json:"reason,omitempty"`
}

// Viable reports whether the investment is recovered.
func (p Payback) Viable() bool { return p.Status == PaybackViable }

// LoadProfileResult is the output of the load-profile engine.
type LoadProfileResult struct {
	KW Float `json:"kw"`

	FullVoltageKWh  Float `json:"consumoPlenaKwh"`
	FullVoltageMWh  Float `json:"consumoPlenaMwh"`
	FullVoltageCost Float `json:"consumoPlenaUsd"`

	DriveKWh  Float `json:"consumoVfdKwh"`
	DriveMWh  Float `json:"consumoVfdMwh"`
	DriveCost Float `json:"consumoVfdUsd"`

	SavingsKWh  Float `json:"ahorroKwh"`
	SavingsMWh  Float `json:"ahorroMwh"`
	SavingsCost Float `json:"ahorroUsd"`

	ROIYears  Float   `json:"roiAnios"`
	ROIMonths Float   `json:"roiMeses"`
	Payback   Payback `json:"payback"`

	TotalTimePercent Float `json:"totalTiempoPercent"`
	ProfileValid     bool  `json:"profileValid"`

	Breakdown []LoadPointConsumption `json:"loadProfileBreakdown"`
}

// Calculation is one audit-log row.
type Calculation struct {
	ID        int64           `json:"id"`
	Kind      string          `json:"kind"`
	Input     json.RawMessage `json:"input"`
	Result    json.RawMessage `json:"result"`
	CreatedAt time.Time       `json:"created_at"`
}

// NewCalculation serializes an engine input and output into an audit row.
func NewCalculation(kind string, input, result any) (Calculation, error) {
	in, err := json.Marshal(input)
	if err != nil {
		return Calculation{}, err
	}
	out, err := json.Marshal(result)
	if err != nil {
		return Calculation{}, err
	}
	return Calculation{
		Kind:      kind,
		Input:     in,
		Result:    out,
		CreatedAt: time.Now().UTC(),
	}, nil
}
