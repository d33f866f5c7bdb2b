package validator

import (
	"encoding/json"
	"testing"
)

func TestValidateExamProposal(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		req     ExamProposalRequest
		wantErr bool
	}{
		{
			name: "valid date",
			req:  ExamProposalRequest{DisciplineID: 1, ExamDate: "2026-02-10"},
		},
		{
			name: "past date parses, periods decide acceptance",
			req:  ExamProposalRequest{DisciplineID: 1, ExamDate: "2020-01-01"},
		},
		{
			name:    "missing discipline",
			req:     ExamProposalRequest{ExamDate: "2026-02-10"},
			wantErr: true,
		},
		{
			name:    "malformed date",
			req:     ExamProposalRequest{DisciplineID: 1, ExamDate: "10/02/2026"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			date, errs := bv.ValidateExamProposal(&tt.req)
			if tt.wantErr {
				if !errs.HasErrors() {
					t.Errorf("ValidateExamProposal() expected errors, got none")
				}
				return
			}
			if errs.HasErrors() {
				t.Fatalf("ValidateExamProposal() unexpected errors: %v", errs)
			}
			if date.Format(DateLayout) != tt.req.ExamDate {
				t.Errorf("parsed date = %s, want %s", date.Format(DateLayout), tt.req.ExamDate)
			}
		})
	}
}

func TestValidatePeriodCreate(t *testing.T) {
	bv := NewBusinessValidator()

	tests := []struct {
		name    string
		req     PeriodCreateRequest
		wantErr bool
	}{
		{
			name: "valid window",
			req:  PeriodCreateRequest{StartDate: "2026-02-01", EndDate: "2026-02-20"},
		},
		{
			name: "single day window",
			req:  PeriodCreateRequest{StartDate: "2026-02-01", EndDate: "2026-02-01"},
		},
		{
			name:    "inverted window",
			req:     PeriodCreateRequest{StartDate: "2026-02-20", EndDate: "2026-02-01"},
			wantErr: true,
		},
		{
			name:    "missing end date",
			req:     PeriodCreateRequest{StartDate: "2026-02-01"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := bv.ValidatePeriodCreate(&tt.req)
			if tt.wantErr != errs.HasErrors() {
				t.Errorf("ValidatePeriodCreate() errors = %v, wantErr %v", errs, tt.wantErr)
			}
		})
	}
}

func TestValidate_DecisionAndRole(t *testing.T) {
	bv := NewBusinessValidator()

	if errs := bv.Validate(&ExamDecisionRequest{Status: "APPROVED"}); errs.HasErrors() {
		t.Errorf("APPROVED decision rejected: %v", errs)
	}
	if errs := bv.Validate(&ExamDecisionRequest{Status: "PROPOSED"}); !errs.HasErrors() {
		t.Error("PROPOSED accepted as a decision")
	}

	valid := UserCreateRequest{Email: "ana.pop@usv.ro", FullName: "Ana Pop", Role: "CADRU_DIDACTIC"}
	if errs := bv.Validate(&valid); errs.HasErrors() {
		t.Errorf("valid user create rejected: %v", errs)
	}
	invalid := UserCreateRequest{Email: "ana.pop@usv.ro", FullName: "Ana Pop", Role: "WIZARD"}
	if errs := bv.Validate(&invalid); !errs.HasErrors() {
		t.Error("unknown role accepted")
	}
}

func TestProfileUpdateRequest_UnmarshalTracksPresence(t *testing.T) {
	tests := []struct {
		name         string
		body         string
		wantHasGroup bool
		wantGroupNil bool
		wantHasYear  bool
		wantFullName bool
	}{
		{
			name:         "set group",
			body:         `{"student_group": "3143a"}`,
			wantHasGroup: true,
		},
		{
			name:         "clear group with null",
			body:         `{"student_group": null}`,
			wantGroupNil: true,
		},
		{
			name:        "omitting leaves fields alone",
			body:        `{"year_of_study": 2}`,
			wantHasYear: true,
		},
		{
			name:         "full name only",
			body:         `{"full_name": "Ion Creangă"}`,
			wantFullName: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var req ProfileUpdateRequest
			if err := json.Unmarshal([]byte(tt.body), &req); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if tt.wantHasGroup && (!req.HasStudentGroup || req.StudentGroup == nil) {
				t.Error("expected student_group to be present and set")
			}
			if tt.wantGroupNil {
				if !req.HasStudentGroup {
					t.Error("explicit null should still mark student_group present")
				}
				if req.StudentGroup != nil {
					t.Error("expected nil student_group for explicit null")
				}
			}
			if tt.wantHasYear != req.HasYearOfStudy {
				t.Errorf("HasYearOfStudy = %v, want %v", req.HasYearOfStudy, tt.wantHasYear)
			}
			if tt.wantFullName != (req.FullName != nil) {
				t.Errorf("FullName presence = %v, want %v", req.FullName != nil, tt.wantFullName)
			}
		})
	}
}
