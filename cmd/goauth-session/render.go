package main

import (
	"fmt"
	"strings"
	"time"

	goAuthClient "github.com/MrEthical07/goAuthClient"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true)
	labelStyle = lipgloss.NewStyle().Faint(true).Width(13)
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			Padding(0, 1)
)

func row(label, value string) string {
	return lipgloss.JoinHorizontal(lipgloss.Top, labelStyle.Render(label), value)
}

// renderStatus draws the session box. nextRefresh reports the armed refresh
// delay, if any.
func renderStatus(s goAuthClient.State, nextRefresh func() (time.Duration, bool)) string {
	if !s.IsAuthenticated {
		return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left,
			titleStyle.Render("Session"),
			row("state", warnStyle.Render("signed out")),
		))
	}

	rows := []string{
		titleStyle.Render("Session"),
		row("state", okStyle.Render("signed in")),
		row("user", fmt.Sprintf("%s <%s>", s.User.Name, s.User.Email)),
		row("role", string(s.User.Role)),
		row("permissions", strings.Join(s.User.Permissions, ", ")),
	}
	if s.SessionID != "" {
		rows = append(rows, row("session", s.SessionID))
	}
	if nextRefresh != nil {
		if d, ok := nextRefresh(); ok {
			rows = append(rows, row("refresh in", d.Round(time.Second).String()))
		}
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

func renderUser(u *goAuthClient.User) string {
	if u == nil {
		return warnStyle.Render("no profile")
	}
	verified := warnStyle.Render("no")
	if u.IsEmailVerified {
		verified = okStyle.Render("yes")
	}
	rows := []string{
		titleStyle.Render("Profile"),
		row("id", u.ID),
		row("name", u.Name),
		row("email", u.Email),
		row("verified", verified),
		row("role", string(u.Role)),
	}
	if u.Avatar != "" {
		rows = append(rows, row("avatar", u.Avatar))
	}
	if u.LastLoginAt != nil {
		rows = append(rows, row("last login", u.LastLoginAt.Local().Format(time.DateTime)))
	}
	return boxStyle.Render(lipgloss.JoinVertical(lipgloss.Left, rows...))
}

// renderTransition is one line per state snapshot for watch.
func renderTransition(s goAuthClient.State) string {
	stamp := time.Now().Format(time.TimeOnly)
	switch {
	case s.IsLoading:
		return fmt.Sprintf("%s %s", stamp, warnStyle.Render("loading"))
	case s.IsAuthenticated:
		return fmt.Sprintf("%s %s %s (%s)", stamp, okStyle.Render("signed in"), s.User.Email, s.User.Role)
	default:
		return fmt.Sprintf("%s %s", stamp, warnStyle.Render("signed out"))
	}
}

func renderNotification(n goAuthClient.Notification) string {
	switch n.Severity {
	case goAuthClient.SeverityError:
		return errStyle.Render("✗ " + n.Message)
	case goAuthClient.SeverityWarning:
		return warnStyle.Render("! " + n.Message)
	case goAuthClient.SeveritySuccess:
		return okStyle.Render("✓ " + n.Message)
	default:
		return "· " + n.Message
	}
}

func renderError(err error) string {
	return errStyle.Render("error: ") + err.Error()
}
