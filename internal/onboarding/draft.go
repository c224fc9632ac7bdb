package onboarding

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/models"
)

// ErrUnknownField is returned when setting a field the role's wizard does
// not define.
var ErrUnknownField = errors.New("unknown onboarding field")

// step is one wizard screen: which fields it owns and which of those are
// required before the wizard may advance past it.
type step struct {
	Fields   []string
	Required []string
}

// Wizard layouts per role. The order of steps is the order the frontend
// renders them in.
var roleSteps = map[string][]step{
	models.RoleClient: {
		{Fields: []string{"company_name", "industry"}, Required: []string{"company_name", "industry"}},
		{Fields: []string{"company_size", "website"}, Required: nil},
		{Fields: []string{"country", "city", "timezone"}, Required: []string{"country", "city"}},
	},
	models.RoleFreelancer: {
		{Fields: []string{"headline", "bio"}, Required: []string{"headline", "bio"}},
		{Fields: []string{"skills"}, Required: []string{"skills"}},
		{Fields: []string{"hourly_rate", "country", "city", "timezone", "website"}, Required: []string{"hourly_rate", "country", "city"}},
	},
}

// listFields are the fields whose value is a list rather than a string.
var listFields = map[string]bool{"skills": true}

// Draft is the ephemeral, step-indexed field store behind the onboarding
// wizard. Nothing is persisted until Submit; navigating away simply lets the
// draft expire. Drafts are not safe for concurrent use; the Store mutates
// the live copy under its lock and only hands out clones.
type Draft struct {
	UserID    uuid.UUID           `json:"user_id"`
	Role      string              `json:"role"`
	Step      int                 `json:"step"`
	Values    map[string]string   `json:"values"`
	Lists     map[string][]string `json:"lists"`
	UpdatedAt time.Time           `json:"updated_at"`
}

// NewDraft returns the initial wizard state: step zero, every string field
// empty, every list field an empty list.
func NewDraft(userID uuid.UUID, role string) *Draft {
	d := &Draft{
		UserID: userID,
		Role:   role,
		Values: make(map[string]string),
		Lists:  make(map[string][]string),
	}
	for _, st := range roleSteps[role] {
		for _, f := range st.Fields {
			if listFields[f] {
				d.Lists[f] = []string{}
			} else {
				d.Values[f] = ""
			}
		}
	}
	return d
}

// Clone returns a deep copy detached from the maps the wizard mutates, safe
// to read and marshal outside the Store lock.
func (d *Draft) Clone() *Draft {
	c := *d
	c.Values = make(map[string]string, len(d.Values))
	for k, v := range d.Values {
		c.Values[k] = v
	}
	c.Lists = make(map[string][]string, len(d.Lists))
	for k, v := range d.Lists {
		c.Lists[k] = append([]string(nil), v...)
	}
	return &c
}

// StepCount returns the number of wizard steps for the draft's role.
func (d *Draft) StepCount() int {
	return len(roleSteps[d.Role])
}

func (d *Draft) knownField(name string) bool {
	for _, st := range roleSteps[d.Role] {
		for _, f := range st.Fields {
			if f == name {
				return true
			}
		}
	}
	return false
}

// SetField updates a single field by key.
func (d *Draft) SetField(name, value string) error {
	if !d.knownField(name) || listFields[name] {
		return ErrUnknownField
	}
	d.Values[name] = value
	return nil
}

// SetListField replaces a list field's value.
func (d *Draft) SetListField(name string, values []string) error {
	if !d.knownField(name) || !listFields[name] {
		return ErrUnknownField
	}
	if values == nil {
		values = []string{}
	}
	d.Lists[name] = values
	return nil
}

func (d *Draft) empty(name string) bool {
	if listFields[name] {
		return len(d.Lists[name]) == 0
	}
	return d.Values[name] == ""
}

// ValidateStep checks the given step's required fields. Errors are only
// surfaced when showErrors is raised (the wizard validates on navigation,
// not per keystroke); without the flag an invalid step still reports
// invalid, just without field messages.
func (d *Draft) ValidateStep(stepIdx int, showErrors bool) (valid bool, fieldErrors map[string]string) {
	steps := roleSteps[d.Role]
	if stepIdx < 0 || stepIdx >= len(steps) {
		return false, nil
	}
	var errs map[string]string
	valid = true
	for _, f := range steps[stepIdx].Required {
		if d.empty(f) {
			valid = false
			if showErrors {
				if errs == nil {
					errs = make(map[string]string)
				}
				errs[f] = "this field is required"
			}
		}
	}
	return valid, errs
}

// Next validates the current step and advances when it passes. Returns the
// field errors when it does not; the step index never moves on failure.
func (d *Draft) Next() (advanced bool, fieldErrors map[string]string) {
	valid, errs := d.ValidateStep(d.Step, true)
	if !valid {
		return false, errs
	}
	if d.Step < d.StepCount()-1 {
		d.Step++
	}
	return true, nil
}

// Back moves one step back. No validation guard.
func (d *Draft) Back() {
	if d.Step > 0 {
		d.Step--
	}
}

// ValidateAll runs every step's validation with errors shown, for submit.
func (d *Draft) ValidateAll() (valid bool, fieldErrors map[string]string) {
	all := make(map[string]string)
	for i := range roleSteps[d.Role] {
		if ok, errs := d.ValidateStep(i, true); !ok {
			for f, msg := range errs {
				all[f] = msg
			}
		}
	}
	if len(all) > 0 {
		return false, all
	}
	return true, nil
}

// Payload renders the draft as the flat document that is schema-validated
// and persisted on submit.
func (d *Draft) Payload() map[string]any {
	out := make(map[string]any, len(d.Values)+len(d.Lists)+1)
	out["role"] = d.Role
	for k, v := range d.Values {
		out[k] = v
	}
	for k, v := range d.Lists {
		out[k] = v
	}
	return out
}
