package menu

import (
	"fmt"

	"github.com/alagaddonjuan/q4icoms/model"
)

// Service codes assigned on the provider dashboard. Each new client gets a
// program here and a matching ussd_code on its row.
const (
	AocosaServiceCode = "*384*19379#"
	Q4iServiceCode    = "*384*55555#"
)

func static(text string, end bool) Screen {
	return Screen{
		Prompt: func(string, model.Client) string { return text },
		End:    end,
	}
}

// AocosaProgram is the alumni association menu: account submenu plus a
// phone-number echo.
func AocosaProgram() Program {
	return Program{
		Name: "aocosa",
		Screens: map[State]Screen{
			StateEntry: {
				Prompt: func(_ string, client model.Client) string {
					return fmt.Sprintf("Welcome to %s.\n1. My Account\n2. My Phone Number", client.Name)
				},
				Next: map[string]State{"1": "account", "2": "phone"},
			},
			"account": {
				Prompt: func(string, model.Client) string {
					return "Choose account information\n1. Account Number\n2. Account Balance"
				},
				Next: map[string]State{"1": "account_number", "2": "account_balance"},
			},
			"phone": {
				Prompt: func(phone string, _ model.Client) string {
					return fmt.Sprintf("Your phone number is %s", phone)
				},
				End: true,
			},
			"account_number": {
				Prompt: func(_ string, client model.Client) string {
					return fmt.Sprintf("Your account number is ACC%d", client.Id)
				},
				End: true,
			},
			"account_balance": static("Your account balance is ₦10,000", true),
		},
		Invalid: "Invalid choice",
	}
}

// Q4iProgram is the telco self-care menu.
func Q4iProgram() Program {
	return Program{
		Name: "q4i",
		Screens: map[State]Screen{
			StateEntry: {
				Prompt: func(string, model.Client) string {
					return "Welcome to Q4I Communications.\n1. Check Airtime Balance\n2. Buy Data"
				},
				Next: map[string]State{"1": "airtime_balance", "2": "buy_data"},
			},
			"airtime_balance": static("Your Airtime balance is NGN 500.", true),
			"buy_data":        static("Data services are coming soon.", true),
		},
		Invalid: "Invalid selection.",
	}
}

// BuiltinRegistry wires every known client program to its service code.
func BuiltinRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(AocosaServiceCode, AocosaProgram())
	registry.Register(Q4iServiceCode, Q4iProgram())
	return registry
}
