// Package console prints reconciliation passes as colored status lines.
//
// Each observation becomes one line: capture time, neighbor role initial,
// availability, minutes since last seen, neighbor name, the neighbor's
// reverse link (LQI, RSSI), the peer's forward link, the relationship and
// the peer name. Colors follow domain bands.
package console

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"zhamesh/internal/domain"
)

const (
	nameWidth = 38
	relWidth  = 14
	timeFmt   = "15:04:05"
)

// Palette
var (
	ColorGreen  = lipgloss.Color("#2ECC71")
	ColorYellow = lipgloss.Color("#F4D03F")
	ColorRed    = lipgloss.Color("#E74C3C")
	ColorBlack  = lipgloss.Color("#000000")
	ColorWhite  = lipgloss.Color("#ECF0F1")
)

type styles struct {
	plain     lipgloss.Style
	bold      lipgloss.Style
	nominal   lipgloss.Style
	degraded  lipgloss.Style
	poor      lipgloss.Style
	staleWarn lipgloss.Style
	staleCrit lipgloss.Style
	alert     lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	return styles{
		plain:     r.NewStyle().Foreground(ColorWhite),
		bold:      r.NewStyle().Bold(true).Foreground(ColorWhite),
		nominal:   r.NewStyle().Bold(true).Foreground(ColorGreen).Background(ColorBlack),
		degraded:  r.NewStyle().Bold(true).Foreground(ColorYellow).Background(ColorBlack),
		poor:      r.NewStyle().Bold(true).Foreground(ColorRed).Background(ColorBlack),
		staleWarn: r.NewStyle().Foreground(ColorBlack).Background(ColorYellow),
		staleCrit: r.NewStyle().Foreground(ColorBlack).Background(ColorRed),
		alert:     r.NewStyle().Bold(true).Foreground(ColorRed),
	}
}

// Printer writes passes to an io.Writer
type Printer struct {
	mu     sync.Mutex
	w      io.Writer
	styles styles
}

// New creates a printer. Color support is detected from w.
func New(w io.Writer) *Printer {
	return &Printer{w: w, styles: newStyles(lipgloss.NewRenderer(w))}
}

// WritePass prints every observation and offline flag followed by a
// separator. The setup pass prints a single notice.
func (p *Printer) WritePass(_ context.Context, pass *domain.Pass) error {
	var b strings.Builder

	if pass.Setup {
		b.WriteString(p.styles.bold.Render(fmt.Sprintf("%s first pass, seeding topology", pass.CapturedAt.Format(timeFmt))))
		b.WriteByte('\n')
	} else {
		for _, o := range pass.Observations {
			b.WriteString(p.observationLine(o))
			b.WriteByte('\n')
		}
		for _, f := range pass.Offline {
			b.WriteString(p.offlineLine(f))
			b.WriteByte('\n')
		}
		b.WriteString(strings.Repeat("-", 40))
		b.WriteByte('\n')
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := io.WriteString(p.w, b.String())
	return err
}

func (p *Printer) observationLine(o domain.Observation) string {
	s := p.styles
	var b strings.Builder

	b.WriteString(s.plain.Render(o.CapturedAt.Format(timeFmt) + " "))
	b.WriteString(s.bold.Render(roleInitial(o.NeighborRole) + " "))
	// the hub reports its own radio as unavailable
	available := o.NeighborAvailable
	if o.NeighborRole == domain.RoleCoordinator {
		available = domain.AvailabilityOnline
	}

	b.WriteString(s.plain.Render("Online "))
	b.WriteString(p.availability(available))
	b.WriteString(s.plain.Render(" Last seen "))
	b.WriteString(p.stale(o.StaleBand(), o.NeighborRole).Render(fmt.Sprintf("%6.1f", o.ElapsedMinutes)))

	neighborName := o.NeighborName
	switch {
	case o.NeighborRole == domain.RoleCoordinator:
		neighborName = string(domain.RoleCoordinator)
	case neighborName == "":
		neighborName = o.NeighborAddress
	}
	b.WriteString(s.plain.Render(" " + fit(neighborName, nameWidth) + " "))

	// reverse link, neighbor to peer
	if available == domain.AvailabilityOffline {
		b.WriteString(s.poor.Render(fmt.Sprintf("%-4s", "unk")))
		b.WriteString(s.poor.Render(fmt.Sprintf("%4s ", "unk")))
	} else {
		b.WriteString(p.lqi(o.NeighborLQI))
		b.WriteString(p.band(domain.RSSIBand(o.NeighborRSSI)).Render(fmt.Sprintf(" %4d ", o.NeighborRSSI)))
	}

	// forward link, peer to neighbor
	peerOffline := o.PeerAvailable == domain.AvailabilityOffline && o.PeerRole != domain.RoleCoordinator
	if peerOffline {
		b.WriteString(s.poor.Render(fmt.Sprintf("%-4s", "unk")))
		b.WriteString(s.poor.Render(fmt.Sprintf("%4s", "unk")))
	} else {
		b.WriteString(p.band(o.PeerLinkBand()).Render(fmt.Sprintf("%3d", o.PeerLQI)))
		b.WriteString(p.band(domain.RSSIBand(o.PeerRSSI)).Render(fmt.Sprintf(" %4d", o.PeerRSSI)))
	}

	b.WriteString(s.plain.Render(" " + fit(o.Relationship, relWidth) + " of "))

	peerStyle := s.plain
	if peerOffline {
		peerStyle = s.alert
	}
	if !o.PeerIsNeighbor {
		peerStyle = s.poor
	}
	peerName := o.PeerName
	if o.PeerRole == domain.RoleCoordinator {
		peerName = string(domain.RoleCoordinator)
	}
	b.WriteString(peerStyle.Render(fit(peerName, nameWidth)))

	return strings.TrimRight(b.String(), " ")
}

func (p *Printer) offlineLine(f domain.OfflineFlag) string {
	s := p.styles
	var b strings.Builder

	b.WriteString(s.plain.Render(f.CapturedAt.Format(timeFmt) + " "))
	b.WriteString(s.bold.Render(roleInitial(f.Role)))
	b.WriteString(s.plain.Render(" Online "))
	b.WriteString(p.availability(domain.AvailabilityOffline))
	b.WriteString(s.plain.Render(" Last seen "))
	b.WriteString(p.stale(f.StaleBand(), f.Role).Render(fmt.Sprintf("%6.1f", f.ElapsedMinutes)))

	nameStyle := s.alert
	if !f.IsNeighbor {
		nameStyle = s.poor
	}
	name := f.Name
	if name == "" {
		name = f.Address
	}
	b.WriteString(nameStyle.Render(" " + fit(name, nameWidth) + " "))
	b.WriteString(s.poor.Render(fmt.Sprintf("%8s", "unk  unk")))

	return b.String()
}

func (p *Printer) availability(a domain.Availability) string {
	if a == domain.AvailabilityOffline {
		return p.styles.poor.Render("F")
	}
	return p.styles.nominal.Render("T")
}

func (p *Printer) lqi(lqi int) string {
	if lqi == 0 {
		return p.styles.poor.Render(fmt.Sprintf("%3s", "na"))
	}
	return p.band(domain.LinkBand(lqi, domain.RoleUnknown)).Render(fmt.Sprintf("%3d", lqi))
}

func (p *Printer) band(b domain.Band) lipgloss.Style {
	switch b {
	case domain.BandDegraded:
		return p.styles.degraded
	case domain.BandPoor, domain.BandNotAvailable:
		return p.styles.poor
	default:
		return p.styles.nominal
	}
}

// stale renders leaf roles with inverted colors
func (p *Printer) stale(b domain.Band, role domain.DeviceRole) lipgloss.Style {
	if !role.IsLeaf() {
		return p.band(b)
	}
	switch b {
	case domain.BandDegraded:
		return p.styles.staleWarn
	case domain.BandPoor:
		return p.styles.staleCrit
	default:
		return p.styles.nominal
	}
}

func roleInitial(r domain.DeviceRole) string {
	if r == "" {
		return "?"
	}
	return string(r)[:1]
}

// fit pads or truncates s to exactly width runes
func fit(s string, width int) string {
	r := []rune(s)
	if len(r) > width {
		return string(r[:width])
	}
	return s + strings.Repeat(" ", width-len(r))
}
