package validate

// Per-route request schemas. Field rules live in validate tags; handlers
// bind JSON onto these structs and call Check.

// ContactRequest is the body of POST /api/contact.
type ContactRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Phone    string `json:"phone" validate:"omitempty,phone"`
	Message  string `json:"message" validate:"required,min=10,max=2000"`
	Consent  bool   `json:"consent" validate:"eq=true"`
	HPToken  string `json:"hp_token"`
	Page     string `json:"page" validate:"omitempty,max=300"`
	SelfTest bool   `json:"_self_test"`
}

// LeadRequest is the body of POST /api/lead.
type LeadRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=100"`
	Email       string `json:"email" validate:"required,email"`
	Message     string `json:"message" validate:"required,min=10,max=2000"`
	ServiceType string `json:"service_type" validate:"required,oneof=agent automation website consulting other"`
	Consent     bool   `json:"consent" validate:"eq=true"`
	HPToken     string `json:"hp_token"`
	Page        string `json:"page" validate:"omitempty,max=300"`
	SelfTest    bool   `json:"_self_test"`
}

// AgentIntake is the structured questionnaire opening an agent session.
type AgentIntake struct {
	BusinessType string   `json:"business_type" validate:"required,oneof=retail services restaurant saas ecommerce other"`
	Goal         string   `json:"goal" validate:"required,oneof=more_leads support_automation content_creation sales_agent other"`
	Channels     []string `json:"channels" validate:"required,min=1,dive,oneof=website instagram telegram whatsapp email"`
	Budget       string   `json:"budget" validate:"required,oneof=under_500 500_2000 2000_5000 over_5000 undecided"`
	Website      string   `json:"website" validate:"omitempty,urlish"`
	Email        string   `json:"email" validate:"omitempty,email"`
}

// AgentSessionRequest is the body of POST /api/agent/session.
type AgentSessionRequest struct {
	Intake  AgentIntake `json:"intake" validate:"required"`
	HPToken string      `json:"hp_token"`
	Page    string      `json:"page" validate:"omitempty,max=300"`
}

// AgentMessageRequest is the body of POST /api/agent/message.
type AgentMessageRequest struct {
	SessionID string `json:"session_id" validate:"required"`
	Message   string `json:"message" validate:"required,min=1,max=2000"`
	HPToken   string `json:"hp_token"`
}

// OrderConfirmRequest is the body of POST /api/order/confirm. The honeypot
// is validated here (hard failure) rather than by the spam screen.
type OrderConfirmRequest struct {
	OrderID string `json:"order_id" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Product string `json:"product" validate:"omitempty,max=200"`
	HPToken string `json:"hp_token" validate:"isdefault"`
}
