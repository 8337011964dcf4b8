package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/brightops/bright-gateway/internal/envelope"
	"github.com/brightops/bright-gateway/internal/storage"
)

var dayLabels = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type insight struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Desc  string `json:"desc"`
}

type chartPoint struct {
	Day   string `json:"day"`
	Score int    `json:"score"`
}

type dashboardStats struct {
	HealthScore      int          `json:"healthScore"`
	MonthlyRevenue   int          `json:"monthlyRevenue"`
	TasksOverdue     int          `json:"tasksOverdue"`
	PendingApprovals int          `json:"pendingApprovals"`
	ChartData        []chartPoint `json:"chartData"`
	Insights         []insight    `json:"insights"`
	TrendHealth      string       `json:"trendHealth"`
	TrendRevenue     string       `json:"trendRevenue"`
	TrendOverdue     string       `json:"trendOverdue"`
	TrendApprovals   string       `json:"trendApprovals"`
}

func (h *handlers) dashboard(w http.ResponseWriter, r *http.Request) {
	tc, ok := h.requireTenant(w, r)
	if !ok {
		return
	}

	tasks, err := h.store.ListTasks(r.Context(), tc.TenantID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Dashboard yuklashda xatolik.")
		return
	}
	inbox, err := h.store.ListInbox(r.Context(), tc.TenantID)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Dashboard yuklashda xatolik.")
		return
	}
	docs, err := h.store.ListDocuments(r.Context(), tc.TenantID, "", 100)
	if err != nil {
		AddError(r.Context(), err)
		envelope.Failure(w, r, http.StatusInternalServerError, "DB_ERROR", "Dashboard yuklashda xatolik.")
		return
	}

	envelope.Success(w, r, computeDashboardStats(tasks, inbox, docs, time.Now()))
}

// computeDashboardStats derives the tenant's dashboard from its raw
// tasks, inbox and documents. All numbers are heuristic scores for the
// overview screen, not accounting data.
func computeDashboardStats(tasks []*storage.Task, inbox []*storage.InboxItem, docs []*storage.Document, now time.Time) dashboardStats {
	overdue := 0
	done := 0
	for _, t := range tasks {
		if t.Status == "done" {
			done++
			continue
		}
		if t.DueDate != nil && t.DueDate.Before(now) {
			overdue++
		}
	}

	pendingApprovals := 0
	hrUnread := 0
	for _, item := range inbox {
		if item.Category == "HR" || item.Category == "Billing" {
			pendingApprovals++
		}
		if item.Category == "HR" && !item.IsRead {
			hrUnread++
		}
	}

	healthScore := clamp(100-overdue*5-pendingApprovals*3, 60, 100)
	monthlyRevenue := 40000 + done*500 - overdue*200

	chartData := make([]chartPoint, len(dayLabels))
	for i, day := range dayLabels {
		chartData[i] = chartPoint{Day: day, Score: clamp(healthScore-(6-i)*2+(i%2), 60, 100)}
	}

	var insights []insight
	if overdue > 0 || pendingApprovals > 0 {
		desc := "Billing xabarlari kutilmoqda. Joriy xarajatlar sur'ati bilan 15-sana uchun kutilayotgan balans manfiy bo'lishi mumkin."
		if overdue > 0 {
			desc = fmt.Sprintf("%d ta muddati o'tgan vazifa. Joriy xarajatlar sur'ati bilan 15-sana uchun kutilayotgan balans manfiy bo'lishi mumkin.", overdue)
		}
		insights = append(insights, insight{Type: "danger", Title: "Kassadagi yetishmovchilik xavfi", Desc: desc})
	}
	if hrUnread >= 2 || pendingApprovals > 0 {
		desc := fmt.Sprintf("%d ta tasdiqlash kutilmoqda. Oxirgi so'rovnomalarda stress darajasi oshgan bo'lishi mumkin.", pendingApprovals)
		if hrUnread >= 2 {
			desc = fmt.Sprintf("Oxirgi so'rovnomalarda Marketing bo'limida stress darajasi oshgan. %d ta HR xabari kutilmoqda.", hrUnread)
		}
		insights = append(insights, insight{Type: "warning", Title: "HR: Diqqat talab qiladi", Desc: desc})
	}
	for _, doc := range docs {
		exp, ok := doc.Metadata["expiry_date"].(string)
		if !ok || exp == "" {
			continue
		}
		expiry, err := time.Parse(time.RFC3339, exp)
		if err != nil {
			continue
		}
		daysLeft := int(expiry.Sub(now).Hours()/24) + 1
		if daysLeft > 0 && daysLeft <= 14 {
			insights = append(insights, insight{
				Type:  "info",
				Title: "Shartnoma muddati tugamoqda",
				Desc:  fmt.Sprintf("Shartnoma %d kundan keyin tugaydi. Avto-yangilash o'chiq.", daysLeft),
			})
			break
		}
	}
	if len(insights) == 0 {
		insights = append(insights, insight{
			Type:  "info",
			Title: "Hammasi yaxshi",
			Desc:  "Hozircha diqqat talab qiladigan masalalar yo'q. Davom eting!",
		})
	}

	trendHealth := "0%"
	if healthScore >= 95 {
		trendHealth = "+2%"
	} else if healthScore >= 85 {
		trendHealth = "+1%"
	}
	trendRevenue := "0%"
	if done > 0 {
		trendRevenue = fmt.Sprintf("+%d%%", min(15, done*2))
	}
	trendOverdue := "0"
	if overdue > 0 {
		trendOverdue = "+1"
	}
	trendApprovals := "0"
	if pendingApprovals > 0 {
		trendApprovals = fmt.Sprintf("%d", pendingApprovals)
	}

	return dashboardStats{
		HealthScore:      healthScore,
		MonthlyRevenue:   monthlyRevenue,
		TasksOverdue:     overdue,
		PendingApprovals: pendingApprovals,
		ChartData:        chartData,
		Insights:         insights,
		TrendHealth:      trendHealth,
		TrendRevenue:     trendRevenue,
		TrendOverdue:     trendOverdue,
		TrendApprovals:   trendApprovals,
	}
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
