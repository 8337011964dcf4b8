package server

import "time"

// Seed payloads returned when a tenant has no real rows yet, so a fresh
// workspace renders with believable data instead of empty screens.

// HRCase is one entry in the HR overview; backed by seed data only.
type HRCase struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Employee  string `json:"employee"`
	Status    string `json:"status"`
	Priority  string `json:"priority"`
	CreatedAt string `json:"created_at"`
	Summary   string `json:"summary"`
}

func seedHRCases() []HRCase {
	return []HRCase{
		{
			ID:        "hr_001",
			Title:     "Burnout risk flagged",
			Employee:  "M. Karimova",
			Status:    "open",
			Priority:  "high",
			CreatedAt: "2026-02-03T09:10:00Z",
			Summary:   "Marketing bo'limida stress yuqori, so'rovnoma natijalari diqqat talab qiladi.",
		},
		{
			ID:        "hr_002",
			Title:     "Onboarding feedback",
			Employee:  "A. Rakhimov",
			Status:    "in_review",
			Priority:  "medium",
			CreatedAt: "2026-01-31T14:40:00Z",
			Summary:   "Yangi xodim uchun onboarding jarayoni kechikmoqda.",
		},
		{
			ID:        "hr_003",
			Title:     "Policy acknowledgement",
			Employee:  "N. Usmonova",
			Status:    "resolved",
			Priority:  "low",
			CreatedAt: "2026-01-22T11:05:00Z",
			Summary:   "HR siyosati bilan tanishganlik bo'yicha tasdiq.",
		},
	}
}

// Integration is one connector in the integrations screen.
type Integration struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Status      string `json:"status"`
	LastSync    string `json:"last_sync"`
}

func seedIntegrations() []Integration {
	return []Integration{
		{
			ID:          "int_telegram",
			Name:        "Telegram",
			Description: "Unified inbox uchun Telegram bot",
			Status:      "connected",
			LastSync:    "2026-02-05T09:20:00Z",
		},
		{
			ID:          "int_email",
			Name:        "Email",
			Description: "Support va billing xatlari",
			Status:      "pending",
			LastSync:    "2026-02-04T18:10:00Z",
		},
		{
			ID:          "int_amocrm",
			Name:        "AmoCRM",
			Description: "Sales pipeline integratsiyasi",
			Status:      "disconnected",
			LastSync:    "2026-01-30T12:00:00Z",
		},
	}
}

func seedTasks() []map[string]any {
	return []map[string]any{
		{
			"id":       "t-1",
			"title":    "Q4 Moliyaviy hisobotni tayyorlash",
			"status":   "in_progress",
			"priority": "high",
			"assignee": map[string]any{"name": "Aziza M."},
			"due_date": time.Now().Add(2 * 24 * time.Hour).UTC(),
			"tags":     []string{"Finance", "Report"},
			"comments": 3,
		},
		{
			"id":       "t-2",
			"title":    "Yangi ofis menejerini ishga olish",
			"status":   "todo",
			"priority": "medium",
			"assignee": map[string]any{"name": "Jasur A."},
			"due_date": time.Now().Add(5 * 24 * time.Hour).UTC(),
			"tags":     []string{"HR", "Hiring"},
			"comments": 0,
		},
	}
}

func seedInbox() []map[string]any {
	return []map[string]any{
		{
			"id":                "1",
			"source":            "telegram",
			"sender":            map[string]any{"name": "Aziz Rakhimov (HR Lead)"},
			"subject":           "Yangi ofis menejeri vakansiyasi",
			"preview":           "Assalomu alaykum. Yangi ofis menejeri uchun e'lon matnini tasdiqlashingiz kerak.",
			"timestamp":         time.Now().UTC(),
			"is_read":           false,
			"category":          "HR",
			"priority":          "High",
			"tags":              []string{"Approval", "Recruiting"},
			"source_message_id": "seed-1",
		},
		{
			"id":                "2",
			"source":            "email",
			"sender":            map[string]any{"name": "Stripe Billing", "email": "billing@stripe.com"},
			"subject":           "Invoice #4023 payment failed",
			"preview":           "We were unable to charge your card ending in 4242.",
			"timestamp":         time.Now().UTC(),
			"is_read":           false,
			"category":          "Billing",
			"priority":          "High",
			"tags":              []string{"Finance", "Urgent"},
			"source_message_id": "seed-2",
		},
	}
}
