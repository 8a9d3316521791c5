package domain

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/goccy/go-json"
)

// ErrMalformedBody is returned when a request body is not a JSON object.
var ErrMalformedBody = errors.New("malformed request body")

// ValidationError lists every field that failed strict decoding, keyed by
// its JSON name.
type ValidationError struct {
	Fields map[string]string `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for n := range e.Fields {
		names = append(names, n)
	}
	sort.Strings(names)
	parts := make([]string, len(names))
	for i, n := range names {
		parts[i] = n + ": " + e.Fields[n]
	}
	return "invalid configuration: " + strings.Join(parts, "; ")
}

func (e *ValidationError) add(field, problem string) {
	if e.Fields == nil {
		e.Fields = map[string]string{}
	}
	if _, ok := e.Fields[field]; !ok {
		e.Fields[field] = problem
	}
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}

type numericField struct {
	name string
	dst  *float64
}

func (c *MotorConfiguration) numericFields() []numericField {
	return []numericField{
		{"motors", &c.Motors},
		{"hpPerMotor", &c.HPPerMotor},
		{"loadFactor", &c.LoadFactor},
		{"operationHours", &c.OperationHours},
		{"electricityRate", &c.ElectricityRate},
		{"driveSavings", &c.DriveSavings},
		{"avoidedStopHours", &c.AvoidedStopHours},
		{"stopCostPerHour", &c.StopCostPerHour},
		{"currentMaintenance", &c.CurrentMaintenance},
		{"maintenanceReduction", &c.MaintenanceReduction},
		{"packageCostPerMotor", &c.PackageCostPerMotor},
		{"projectHorizon", &c.ProjectHorizon},
	}
}

func (c *LoadProfileConfiguration) numericFields() []numericField {
	return []numericField{
		{"cantidadMotores", &c.Motors},
		{"hp", &c.HP},
		{"eficiencia", &c.Efficiency},
		{"voltaje", &c.Voltage},
		{"horasAnio", &c.Hours},
		{"costoKwhUsd", &c.RatePerKWh},
		{"inversionDriveInstalacion", &c.Investment},
	}
}

// DecodeMotorConfiguration parses a flat-rate request body.
//
// In lenient mode every field that is missing or cannot be read as a number
// becomes 0 and decoding never fails past the JSON syntax check. In strict
// mode those fields, and values outside their physical range, are reported
// in a *ValidationError.
func DecodeMotorConfiguration(data []byte, strict bool) (MotorConfiguration, error) {
	var cfg MotorConfiguration
	raw, err := decodeObject(data)
	if err != nil {
		return cfg, err
	}
	verr := &ValidationError{}
	coerceFields(raw, "", cfg.numericFields(), strict, verr)
	if strict {
		validateStruct(cfg, verr)
	}
	return cfg, verr.orNil()
}

// DecodeLoadProfileConfiguration parses a load-profile request body with the
// same lenient/strict rules as DecodeMotorConfiguration. Each loadProfile
// element is coerced the same way.
func DecodeLoadProfileConfiguration(data []byte, strict bool) (LoadProfileConfiguration, error) {
	var cfg LoadProfileConfiguration
	raw, err := decodeObject(data)
	if err != nil {
		return cfg, err
	}
	verr := &ValidationError{}
	coerceFields(raw, "", cfg.numericFields(), strict, verr)

	var points []json.RawMessage
	if rp, ok := raw["loadProfile"]; ok {
		if err := json.Unmarshal(rp, &points); err != nil && strict {
			verr.add("loadProfile", "must be an array")
		}
	} else if strict {
		verr.add("loadProfile", "required")
	}
	cfg.LoadProfile = make(LoadProfile, len(points))
	for i, p := range points {
		prefix := fmt.Sprintf("loadProfile[%d].", i)
		var obj map[string]json.RawMessage
		if err := json.Unmarshal(p, &obj); err != nil {
			if strict {
				verr.add(strings.TrimSuffix(prefix, "."), "must be an object")
			}
			continue
		}
		pt := &cfg.LoadProfile[i]
		coerceFields(obj, prefix, []numericField{
			{"flow", &pt.Flow},
			{"timePercent", &pt.TimePercent},
		}, strict, verr)
	}

	if strict {
		validateStruct(cfg, verr)
	}
	return cfg, verr.orNil()
}

func decodeObject(data []byte) (map[string]json.RawMessage, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	if raw == nil {
		return nil, fmt.Errorf("%w: expected a JSON object", ErrMalformedBody)
	}
	return raw, nil
}

func coerceFields(raw map[string]json.RawMessage, prefix string, fields []numericField, strict bool, verr *ValidationError) {
	for _, f := range fields {
		v, ok := raw[f.name]
		if !ok {
			if strict {
				verr.add(prefix+f.name, "required")
			}
			continue
		}
		n, ok := coerceNumber(v)
		if !ok && strict {
			verr.add(prefix+f.name, "must be a number")
		}
		*f.dst = n
	}
}

// coerceNumber reads a JSON number or a numeric string. Anything else
// yields (0, false).
func coerceNumber(v json.RawMessage) (float64, bool) {
	if strings.TrimSpace(string(v)) == "null" {
		return 0, false
	}
	var n float64
	if err := json.Unmarshal(v, &n); err == nil {
		return n, true
	}
	var s string
	if err := json.Unmarshal(v, &s); err == nil {
		if n, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return n, true
		}
	}
	return 0, false
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func validateStruct(s any, verr *ValidationError) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	var ves validator.ValidationErrors
	if !errors.As(err, &ves) {
		verr.add("_", err.Error())
		return
	}
	for _, fe := range ves {
		// drop the leading struct name from "MotorConfiguration.motors"
		field := fe.Namespace()
		if i := strings.Index(field, "."); i >= 0 {
			field = field[i+1:]
		}
		verr.add(field, describeRule(fe))
	}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "required", "min":
		return "required"
	}
	return "failed " + fe.Tag()
}
