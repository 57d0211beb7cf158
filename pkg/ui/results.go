package ui

import (
	"fmt"
	"strings"

	"github.com/mcpsentry/mcpsentry/pkg/finding"
	"github.com/mcpsentry/mcpsentry/pkg/output"
)

// RenderReport renders the scan report for the console. Styled output on
// capable terminals, plain text when piped or color-disabled.
func RenderReport(r *output.Report) string {
	return renderReport(r, Styled())
}

func renderReport(r *output.Report, styled bool) string {
	var b strings.Builder

	title := "MCP Security Scan"
	if styled {
		title = TitleStyle.Render(title)
	}
	b.WriteString(title)
	b.WriteString("\n\n")

	for _, srv := range r.Servers {
		b.WriteString(renderServer(srv, styled))
	}

	b.WriteString(renderSummary(r, styled))
	return b.String()
}

func renderServer(srv finding.ServerScanResult, styled bool) string {
	var b strings.Builder

	status := string(srv.Status)
	if styled {
		status = StatusStyle(srv.Status).Render(status)
	}
	fmt.Fprintf(&b, "%s (%s) %s\n", srv.Name, srv.Transport, status)

	if srv.Error != "" {
		line := "  " + srv.Error
		if styled {
			line = MutedStyle.Render(line)
		}
		b.WriteString(line)
		b.WriteByte('\n')
	}

	for _, tool := range srv.Tools {
		verdict := "safe"
		if !tool.IsSafe {
			verdict = "UNSAFE"
		}
		if styled {
			if tool.IsSafe {
				verdict = SafeStyle.Render(verdict)
			} else {
				verdict = FailedStyle.Render(verdict)
			}
		}
		fmt.Fprintf(&b, "  %s: %s\n", tool.Name, verdict)

		for _, f := range tool.Findings {
			sev := strings.ToUpper(string(f.Severity))
			if styled {
				sev = SeverityStyle(f.Severity).Render(sev)
			}
			fmt.Fprintf(&b, "    [%s] %s\n", sev, f.Description)
			if len(f.ThreatNames) > 0 {
				threats := "      threats: " + strings.Join(f.ThreatNames, ", ")
				if styled {
					threats = MutedStyle.Render(threats)
				}
				b.WriteString(threats)
				b.WriteByte('\n')
			}
		}
	}
	b.WriteByte('\n')
	return b.String()
}

func renderSummary(r *output.Report, styled bool) string {
	var b strings.Builder

	header := "Summary"
	if styled {
		header = SectionStyle.Render(header)
	}
	b.WriteString(header)
	b.WriteByte('\n')

	s := r.Summary
	fmt.Fprintf(&b, "  servers: %d scanned, %d failed, %d skipped (of %d)\n",
		s.ScannedServers, s.FailedServers, s.SkippedServers, s.TotalServers)
	fmt.Fprintf(&b, "  tools:   %d analyzed, %d safe, %d unsafe\n",
		s.TotalTools, s.SafeTools, s.UnsafeTools)
	fmt.Fprintf(&b, "  findings: %d (critical %d, high %d, medium %d, low %d, info %d)\n",
		s.TotalFindings,
		s.Severities.Critical, s.Severities.High, s.Severities.Medium,
		s.Severities.Low, s.Severities.Info)

	verdict := "PASS: no blocking findings"
	if s.HasBlockingFindings() {
		verdict = "FAIL: critical or high severity findings present"
	}
	if styled {
		if s.HasBlockingFindings() {
			verdict = FailedStyle.Render(verdict)
		} else {
			verdict = SafeStyle.Render(verdict)
		}
	}
	b.WriteString("\n  " + verdict + "\n")
	return b.String()
}
