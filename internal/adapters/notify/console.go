package notify

// console.go — presentación de calls, picks lockeados y reportes.
// Dos modos: compacto (una línea por ciclo, pensado para correr bajo un
// scheduler) y tabla (inspección manual).

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/picklock/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// Console implementa ports.Notifier.
type Console struct {
	out   io.Writer
	table bool
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(table bool) *Console {
	return &Console{out: os.Stdout, table: table}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, table bool) *Console {
	return &Console{out: w, table: table}
}

// NotifyCandidates imprime las calls del scoring, picks primero por score
// descendente.
func (c *Console) NotifyCandidates(_ context.Context, calls []domain.Call) error {
	picks, noBets := splitCalls(calls)

	if len(calls) == 0 {
		fmt.Fprintf(c.out, "[%s] no markets scored\n", time.Now().Format("15:04:05"))
		return nil
	}

	if c.table {
		c.printCandidateTable(picks, noBets)
	} else {
		c.printCandidateCompact(picks, noBets)
	}
	return nil
}

// printCandidateCompact imprime lo esencial en una línea.
func (c *Console) printCandidateCompact(picks []domain.Candidate, noBets int) {
	now := time.Now().Format("15:04:05")

	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s] %d picks / %d no_bet", now, len(picks), noBets)

	shown := 0
	for _, p := range picks {
		if shown >= 4 {
			break
		}
		fmt.Fprintf(&sb, " | %s %s s%d %s", tierIcon(p.Tier), compactSide(p.Side, 22), p.Score, p.ConfidenceLabel)
		shown++
	}
	fmt.Fprintln(c.out, sb.String())
}

// printCandidateTable imprime la tabla completa con rationale.
func (c *Console) printCandidateTable(picks []domain.Candidate, noBets int) {
	now := time.Now().Format("15:04:05")
	fmt.Fprintf(c.out, "\n[%s] %d picks — %d markets passed as no_bet\n", now, len(picks), noBets)

	if len(picks) == 0 {
		return
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "Tier", "Sport", "Market", "Selection", "Score", "Conf", "Start", "Rationale")

	for i, p := range picks {
		table.Append(
			fmt.Sprintf("%d", i+1),
			tierLabel(p.Tier),
			p.Sport,
			string(p.Market),
			truncate(p.Side, 28),
			fmt.Sprintf("%d", p.Score),
			fmt.Sprintf("%.0f%% %s", p.Confidence*100, p.ConfidenceLabel),
			p.StartTime.Format("01-02 15:04"),
			truncate(strings.Join(p.Rationale, "; "), 60),
		)
	}
	table.Render()
}

// NotifyLocked imprime los picks lockeados o, en dry-run, los que se
// lockearían.
func (c *Console) NotifyLocked(_ context.Context, picks []domain.LockedPick, dryRun bool) error {
	now := time.Now().Format("15:04:05")
	mode := "LOCKED"
	if dryRun {
		mode = "DRY-RUN"
	}

	if len(picks) == 0 {
		fmt.Fprintf(c.out, "[%s][%s] no eligible picks this cycle\n", now, mode)
		return nil
	}

	fmt.Fprintf(c.out, "\n[%s][%s] %d picks\n", now, mode, len(picks))
	for _, p := range picks {
		fmt.Fprintf(c.out, "  %s %-12s %-10s %-28s score:%d conf:%.0f%% start:%s %s\n",
			tierIcon(p.Tier), p.Sport, p.Market, truncate(p.Side, 28),
			p.Score, p.Confidence*100,
			p.GameStartTime.Format("15:04"), oddsLabel(p))
	}
	return nil
}

// NotifyReport imprime el rollup de performance como tabla.
func (c *Console) NotifyReport(_ context.Context, report domain.PerformanceReport) error {
	fmt.Fprintf(c.out, "\n=== PERFORMANCE %s → %s [%s] ===\n",
		report.From.Format("2006-01-02"), report.To.Format("2006-01-02"), report.Source)

	total := report.Overall.Wins + report.Overall.Losses + report.Overall.Pushes
	if total == 0 {
		fmt.Fprintln(c.out, "  no graded results in range")
		return nil
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("Group", "Key", "W", "L", "P", "Win%", "Units")

	appendGroup := func(group string, g domain.GroupStats) {
		table.Append(
			group,
			g.Key,
			fmt.Sprintf("%d", g.Wins),
			fmt.Sprintf("%d", g.Losses),
			fmt.Sprintf("%d", g.Pushes),
			fmt.Sprintf("%.1f", g.WinPct),
			fmt.Sprintf("%+.2f", g.Units),
		)
	}

	appendGroup("overall", report.Overall)
	for _, g := range report.BySport {
		appendGroup("sport", g)
	}
	for _, g := range report.ByMarket {
		appendGroup("market", g)
	}
	for _, g := range report.ByTier {
		appendGroup("tier", g)
	}
	table.Render()

	fmt.Fprintf(c.out, "  %d results — %d wins / %d losses / %d pushes, net %+.2f units\n",
		total, report.Overall.Wins, report.Overall.Losses, report.Overall.Pushes,
		report.Overall.Units)
	return nil
}

// --- helpers ---

// splitCalls separa picks (ordenados por score descendente) y cuenta no_bets.
func splitCalls(calls []domain.Call) ([]domain.Candidate, int) {
	var picks []domain.Candidate
	noBets := 0
	for _, call := range calls {
		if call.IsPick() {
			picks = append(picks, call.Candidate)
		} else {
			noBets++
		}
	}
	sort.SliceStable(picks, func(i, j int) bool { return picks[i].Score > picks[j].Score })
	return picks, noBets
}

func tierIcon(t domain.Tier) string {
	switch t {
	case domain.TierTopPick:
		return "[T]"
	case domain.TierStrongLean:
		return "[S]"
	case domain.TierWatchlist:
		return "[w]"
	}
	return "[·]"
}

func tierLabel(t domain.Tier) string {
	if t == domain.TierNone {
		return "-"
	}
	return string(t)
}

// oddsLabel muestra el precio congelado relevante para el pick, o "-" si el
// snapshot quedó vacío.
func oddsLabel(p domain.LockedPick) string {
	switch p.Market {
	case domain.MarketMoneyline:
		if p.Odds.MLHome != nil && p.Odds.MLAway != nil {
			return fmt.Sprintf("ml %+d/%+d", *p.Odds.MLHome, *p.Odds.MLAway)
		}
	case domain.MarketSpread:
		if p.Odds.SpreadPointHome != nil && p.Odds.SpreadPriceHome != nil {
			return fmt.Sprintf("sp %+.1f (%+d)", *p.Odds.SpreadPointHome, *p.Odds.SpreadPriceHome)
		}
	}
	return "odds:-"
}

// truncate corta por runas: los nombres de equipo pueden traer acentos y un
// corte por bytes partiría el string en medio de una runa.
func truncate(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen-3]) + "..."
}

func compactSide(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	cut := r[:maxLen]
	// Retroceder hasta un espacio para no cortar a mitad de palabra.
	for i := len(cut) - 1; i > maxLen/2; i-- {
		if cut[i] == ' ' {
			cut = cut[:i]
			break
		}
	}
	return string(cut) + "…"
}
