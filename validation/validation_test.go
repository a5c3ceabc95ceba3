package validation

import (
	"strings"
	"testing"

	"github.com/kbukum/servicehub/errors"
)

type sampleService struct {
	Name   string `json:"name" validate:"required,svcname"`
	Method string `json:"method" validate:"omitempty,httpmethod"`
	Port   int    `json:"port" validate:"required,min=1,max=65535"`
}

func TestValidate_Success(t *testing.T) {
	s := sampleService{Name: "user-profile", Method: "GET", Port: 8080}
	if err := Validate(s); err != nil {
		t.Fatalf("expected valid struct, got %v", err)
	}
}

func TestValidate_ServiceName_Table(t *testing.T) {
	tests := []struct {
		name  string
		valid bool
	}{
		{"billing", true},
		{"user-profile", true},
		{"svc2", true},
		{"Billing", false},
		{"has space", false},
		{"trailing-", false},
		{"-leading", false},
		{"double--dash", false},
		{"", false},
	}
	for _, tc := range tests {
		err := Validate(sampleService{Name: tc.name, Port: 80})
		if tc.valid && err != nil {
			t.Errorf("name %q: expected valid, got %v", tc.name, err)
		}
		if !tc.valid && err == nil {
			t.Errorf("name %q: expected invalid", tc.name)
		}
	}
}

func TestValidate_HTTPMethod(t *testing.T) {
	if err := Validate(sampleService{Name: "a", Method: "FETCH", Port: 80}); err == nil {
		t.Error("expected FETCH to be rejected")
	}
	if err := Validate(sampleService{Name: "a", Method: "delete", Port: 80}); err != nil {
		t.Errorf("lowercase method should be accepted, got %v", err)
	}
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	err := Validate(sampleService{Name: "ok", Port: 0})
	if err == nil {
		t.Fatal("expected error for missing port")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if !strings.Contains(appErr.Message, "port") {
		t.Errorf("expected message to reference json field name, got %q", appErr.Message)
	}
	if appErr.Code != errors.ErrCodeInvalidInput {
		t.Errorf("expected INVALID_INPUT, got %s", appErr.Code)
	}
}
