package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/almirah-shop/storefront/internal/client"
	"github.com/almirah-shop/storefront/internal/types"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// errorText prefers the backend's own message for API failures.
func errorText(err error) string {
	var apiErr *client.APIError
	var netErr *client.NetworkError
	switch {
	case errors.As(err, &apiErr):
		return client.UserMessage(err)
	case errors.As(err, &netErr):
		return "could not reach the shop: " + netErr.Err.Error()
	}
	return err.Error()
}

func renderTable(out io.Writer, headers []string, rows [][]string) {
	if len(rows) == 0 {
		fmt.Fprintln(out, mutedStyle.Render("(none)"))
		return
	}
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
	fmt.Fprintln(out, t.Render())
}

func heading(out io.Writer, s string) {
	fmt.Fprintln(out, titleStyle.Render(s))
}

func success(out io.Writer, format string, args ...any) {
	fmt.Fprintln(out, okStyle.Render(fmt.Sprintf(format, args...)))
}

func money(d decimal.Decimal) string {
	return "₹" + d.StringFixed(2)
}

func moneyFloat(v float64) string {
	return money(decimal.NewFromFloat(v))
}

// priceLabel shows the effective price with the list price struck through when discounted.
func priceLabel(p types.Product) string {
	if !p.Discounted() {
		return money(p.EffectivePrice())
	}
	return money(p.EffectivePrice()) + " " + mutedStyle.Strikethrough(true).Render(moneyFloat(p.Price))
}

func stock(p types.Product) string {
	if p.InStock {
		return "in stock"
	}
	return "out of stock"
}

func idArg(args []string, i int) (int64, error) {
	id, err := strconv.ParseInt(args[i], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%q is not a valid id", args[i])
	}
	return id, nil
}

func optional(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func strPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// secret returns flagValue, or reads one line from stdin when it is empty.
func secret(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt+": ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read %s: %w", prompt, err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("%s is required", prompt)
	}
	return line, nil
}

func formatAddress(a types.Address) string {
	lines := []string{a.FullName + " (" + string(a.Tag) + ")"}
	lines = append(lines, a.Lines()...)
	if a.Landmark != "" {
		lines = append(lines, "near "+a.Landmark)
	}
	lines = append(lines, a.City+", "+a.State+" "+a.Pincode, a.Phone)
	return strings.Join(lines, "\n")
}
