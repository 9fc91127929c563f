package menu

import (
	"testing"

	"github.com/alagaddonjuan/q4icoms/model"
)

var aocosaClient = model.Client{Id: 42, Name: "AOCOSA"}

func TestAocosaEntryScreen(t *testing.T) {
	resp := AocosaProgram().Respond("", "2348012345678", aocosaClient)
	if resp.End {
		t.Fatalf("entry screen should keep the session open")
	}
	want := "CON Welcome to AOCOSA.\n1. My Account\n2. My Phone Number"
	if got := resp.Render(); got != want {
		t.Fatalf("entry screen = %q, want %q", got, want)
	}
}

func TestAocosaAccountSubmenu(t *testing.T) {
	resp := AocosaProgram().Respond("1", "2348012345678", aocosaClient)
	if resp.End {
		t.Fatalf("account submenu should keep the session open")
	}
	want := "CON Choose account information\n1. Account Number\n2. Account Balance"
	if got := resp.Render(); got != want {
		t.Fatalf("account submenu = %q, want %q", got, want)
	}
}

func TestAocosaTerminalScreens(t *testing.T) {
	cases := []struct {
		input string
		want  string
	}{
		{"1*1", "END Your account number is ACC42"},
		{"1*2", "END Your account balance is ₦10,000"},
		{"2", "END Your phone number is 2348012345678"},
	}
	program := AocosaProgram()
	for _, tc := range cases {
		resp := program.Respond(tc.input, "2348012345678", aocosaClient)
		if !resp.End {
			t.Fatalf("input %q should end the session", tc.input)
		}
		if got := resp.Render(); got != tc.want {
			t.Fatalf("input %q = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestAocosaInvalidChoices(t *testing.T) {
	program := AocosaProgram()
	for _, input := range []string{"9", "1*9", "2*1", "1*1*1"} {
		resp := program.Respond(input, "2348012345678", aocosaClient)
		if !resp.End {
			t.Fatalf("input %q should end the session", input)
		}
		if got := resp.Render(); got != "END Invalid choice" {
			t.Fatalf("input %q = %q, want END Invalid choice", input, got)
		}
	}
}

func TestQ4iInvalidSelection(t *testing.T) {
	resp := Q4iProgram().Respond("7", "2348012345678", model.Client{Name: "Q4I"})
	if got := resp.Render(); got != "END Invalid selection." {
		t.Fatalf("got %q, want END Invalid selection.", got)
	}
}

func TestRespondIsDeterministic(t *testing.T) {
	program := AocosaProgram()
	first := program.Respond("1*2", "2348012345678", aocosaClient)
	for i := 0; i < 10; i++ {
		if again := program.Respond("1*2", "2348012345678", aocosaClient); again != first {
			t.Fatalf("response changed between identical turns: %+v vs %+v", first, again)
		}
	}
}

func TestRegistryRoute(t *testing.T) {
	registry := BuiltinRegistry()

	resp, err := registry.Route(Q4iServiceCode, "1", "2348012345678", model.Client{Name: "Q4I"})
	if err != nil {
		t.Fatalf("route failed: %v", err)
	}
	if got := resp.Render(); got != "END Your Airtime balance is NGN 500." {
		t.Fatalf("got %q", got)
	}

	if _, err := registry.Route("*999#", "", "2348012345678", model.Client{}); err != ErrUnknownServiceCode {
		t.Fatalf("expected ErrUnknownServiceCode, got %v", err)
	}
}
