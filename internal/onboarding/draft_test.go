package onboarding

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/skilllinkup/backend/internal/models"
)

func TestNewDraft_InitializesAllFields(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleFreelancer)

	if d.Step != 0 {
		t.Fatalf("expected step 0, got %d", d.Step)
	}
	if d.StepCount() != 3 {
		t.Fatalf("expected 3 freelancer steps, got %d", d.StepCount())
	}
	for _, f := range []string{"headline", "bio", "hourly_rate", "country", "city", "timezone", "website"} {
		if _, ok := d.Values[f]; !ok {
			t.Errorf("string field %q not initialized", f)
		}
	}
	if lst, ok := d.Lists["skills"]; !ok || lst == nil {
		t.Error("skills list not initialized")
	}
}

func TestSetField_UnknownFieldRejected(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleClient)

	if err := d.SetField("company_name", "Acme"); err != nil {
		t.Fatalf("SetField: %v", err)
	}
	if err := d.SetField("headline", "x"); err != ErrUnknownField {
		t.Fatalf("freelancer field on client draft: expected ErrUnknownField, got %v", err)
	}
	if err := d.SetField("skills", "go"); err != ErrUnknownField {
		t.Fatalf("list field via SetField: expected ErrUnknownField, got %v", err)
	}
	if err := d.SetListField("skills", []string{"go"}); err != ErrUnknownField {
		t.Fatalf("client draft has no skills list: expected ErrUnknownField, got %v", err)
	}
}

func TestNext_IncompleteStepStaysPut(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleClient)
	_ = d.SetField("company_name", "Acme")
	// industry intentionally left empty

	advanced, errs := d.Next()

	if advanced {
		t.Fatal("expected Next to refuse advancing")
	}
	if d.Step != 0 {
		t.Fatalf("step must not move on failure, got %d", d.Step)
	}
	if msg, ok := errs["industry"]; !ok || msg == "" {
		t.Fatalf("expected a field error for industry, got %v", errs)
	}
	if _, ok := errs["company_name"]; ok {
		t.Error("filled field must not carry an error")
	}
}

func TestNext_CompleteStepAdvances(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleClient)
	_ = d.SetField("company_name", "Acme")
	_ = d.SetField("industry", "software")

	advanced, errs := d.Next()

	if !advanced || errs != nil {
		t.Fatalf("expected advance, got advanced=%v errs=%v", advanced, errs)
	}
	if d.Step != 1 {
		t.Fatalf("expected step 1, got %d", d.Step)
	}
}

func TestNext_OptionalStepAdvancesEmpty(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleClient)
	d.Step = 1 // company_size and website are both optional

	advanced, _ := d.Next()

	if !advanced || d.Step != 2 {
		t.Fatalf("optional step should advance, got advanced=%v step=%d", advanced, d.Step)
	}
}

func TestValidateStep_ErrorsOnlyWhenShown(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleFreelancer)

	valid, errs := d.ValidateStep(0, false)
	if valid {
		t.Fatal("empty required step must be invalid")
	}
	if errs != nil {
		t.Fatalf("errors must stay hidden without the flag, got %v", errs)
	}

	valid, errs = d.ValidateStep(0, true)
	if valid || len(errs) != 2 {
		t.Fatalf("expected errors for headline and bio, got valid=%v errs=%v", valid, errs)
	}
}

func TestValidateStep_ListFieldRequired(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleFreelancer)
	d.Step = 1

	if valid, _ := d.ValidateStep(1, true); valid {
		t.Fatal("empty skills list must fail validation")
	}
	_ = d.SetListField("skills", []string{"go", "postgres"})
	if valid, errs := d.ValidateStep(1, true); !valid {
		t.Fatalf("expected valid, got %v", errs)
	}
}

func TestBack_NeverValidatesAndStopsAtZero(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleClient)
	d.Step = 2

	d.Back()
	if d.Step != 1 {
		t.Fatalf("expected step 1, got %d", d.Step)
	}
	d.Back()
	d.Back()
	d.Back()
	if d.Step != 0 {
		t.Fatalf("step must floor at 0, got %d", d.Step)
	}
}

func TestValidateAll_CollectsAcrossSteps(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleFreelancer)
	_ = d.SetField("headline", "Go developer")
	// bio, skills, hourly_rate, country, city all missing

	valid, errs := d.ValidateAll()

	if valid {
		t.Fatal("expected invalid")
	}
	for _, f := range []string{"bio", "skills", "hourly_rate", "country", "city"} {
		if _, ok := errs[f]; !ok {
			t.Errorf("expected error for %q, got %v", f, errs)
		}
	}
	if _, ok := errs["headline"]; ok {
		t.Error("filled field must not carry an error")
	}
	if _, ok := errs["website"]; ok {
		t.Error("optional field must not carry an error")
	}
}

func TestPayload_FlattensValuesAndLists(t *testing.T) {
	d := NewDraft(uuid.New(), models.RoleFreelancer)
	_ = d.SetField("headline", "Go developer")
	_ = d.SetListField("skills", []string{"go"})

	p := d.Payload()

	if p["role"] != models.RoleFreelancer {
		t.Errorf("role: got %v", p["role"])
	}
	if p["headline"] != "Go developer" {
		t.Errorf("headline: got %v", p["headline"])
	}
	skills, ok := p["skills"].([]string)
	if !ok || len(skills) != 1 || skills[0] != "go" {
		t.Errorf("skills: got %v", p["skills"])
	}
}

// ---------------------------------------------------------------------------
// Store
// ---------------------------------------------------------------------------

func TestStore_StartReplacesExistingDraft(t *testing.T) {
	s := NewStore(0)
	userID := uuid.New()

	first := s.Start(userID, models.RoleClient)
	_ = first.SetField("company_name", "Acme")

	second := s.Start(userID, models.RoleClient)
	if second.Values["company_name"] != "" {
		t.Fatal("Start must hand out a fresh draft")
	}
}

func TestStore_UpdateMissingDraft(t *testing.T) {
	s := NewStore(0)

	found, err := s.Update(uuid.New(), func(*Draft) error { return nil })
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if found {
		t.Fatal("expected found=false for missing draft")
	}
}

func TestStore_GetAndDelete(t *testing.T) {
	s := NewStore(0)
	userID := uuid.New()

	if s.Get(userID) != nil {
		t.Fatal("expected nil before Start")
	}
	s.Start(userID, models.RoleFreelancer)
	if s.Get(userID) == nil {
		t.Fatal("expected draft after Start")
	}
	s.Delete(userID)
	if s.Get(userID) != nil {
		t.Fatal("expected nil after Delete")
	}
}

func TestStore_GetReturnsDetachedCopy(t *testing.T) {
	s := NewStore(0)
	userID := uuid.New()
	s.Start(userID, models.RoleClient)

	first := s.Get(userID)
	first.Values["company_name"] = "scribbled on the copy"
	first.Lists["bogus"] = []string{"x"}

	if got := s.Get(userID); got.Values["company_name"] != "" {
		t.Fatal("writes to a returned draft must not reach the store")
	}

	before := s.Get(userID)
	_, _ = s.Update(userID, func(d *Draft) error {
		return d.SetField("company_name", "Acme")
	})
	if before.Values["company_name"] != "" {
		t.Fatal("Update must not mutate previously returned copies")
	}
}

// Two requests from the same user can hit the store at once (double-click,
// two tabs); readers marshal their copy while a writer mutates the draft.
func TestStore_ConcurrentUpdateAndRead(t *testing.T) {
	s := NewStore(0)
	userID := uuid.New()
	s.Start(userID, models.RoleFreelancer)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			_, _ = s.Update(userID, func(d *Draft) error {
				_ = d.SetField("headline", "Go developer")
				return d.SetListField("skills", []string{"go", "postgres"})
			})
		}
	}()
	go func() {
		defer wg.Done()
		for i := 0; i < 200; i++ {
			if d := s.Get(userID); d != nil {
				if _, err := json.Marshal(toDraftResponse(d)); err != nil {
					t.Errorf("marshal: %v", err)
					return
				}
			}
		}
	}()
	wg.Wait()
}
