package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/pagepack/pagepack/pkg/doc"
	"github.com/pagepack/pagepack/pkg/docio"
	"github.com/pagepack/pagepack/pkg/packer"
)

// pagesCommand creates the pages command for listing a document's pages.
func (c *CLI) pagesCommand() *cobra.Command {
	var interactive bool

	cmd := &cobra.Command{
		Use:   "pages <document.json>",
		Short: "List a document's pages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			d, err := docio.Import(args[0])
			if err != nil {
				printError("%v", err)
				return err
			}

			if interactive {
				model := newPageListModel(d)
				_, err := tea.NewProgram(model).Run()
				return err
			}

			printPageTable(d)
			printDetail("%d pages", d.NumPages())
			return nil
		},
	}

	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "browse pages interactively")
	return cmd
}

// printPageTable renders the page list as a bordered table.
func printPageTable(d *doc.Document) {
	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	rows := [][]string{}
	for _, p := range d.Pages() {
		rows = append(rows, []string{p.Name, fmt.Sprintf("%d", p.NumChildren()), pageMarker(d, p)})
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Page", "Nodes", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			return lipgloss.NewStyle()
		})

	fmt.Println(t.Render())
}

func pageMarker(d *doc.Document, p *doc.Page) string {
	marker := ""
	if packer.IsStagingPage(p) {
		marker = styleStaging.Render("staging")
	}
	if d.CurrentPage() == p {
		if marker != "" {
			marker += ", "
		}
		marker += "current"
	}
	return marker
}

// =============================================================================
// pageListModel - Interactive page browser
// =============================================================================

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// pageListModel is the bubbletea model for browsing pages. Enter toggles
// a detail view of the highlighted page's top-level nodes.
type pageListModel struct {
	document *doc.Document
	pages    []*doc.Page
	cursor   int
	expanded bool
	height   int
	offset   int
}

func newPageListModel(d *doc.Document) pageListModel {
	return pageListModel{
		document: d,
		pages:    d.Pages(),
		height:   15,
	}
}

func (m pageListModel) Init() tea.Cmd {
	return nil
}

func (m pageListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
				m.expanded = false
				if m.cursor < m.offset {
					m.offset = m.cursor
				}
			}
		case "down", "j":
			if m.cursor < len(m.pages)-1 {
				m.cursor++
				m.expanded = false
				if m.cursor >= m.offset+m.height {
					m.offset = m.cursor - m.height + 1
				}
			}
		case "enter":
			m.expanded = !m.expanded
		}
	case tea.WindowSizeMsg:
		m.height = msg.Height - 6
		if m.height < 5 {
			m.height = 5
		}
	}
	return m, nil
}

func (m pageListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(m.document.Name))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("\u2191/\u2193 navigate  \u23ce expand  q quit"))
	b.WriteString("\n\n")

	end := m.offset + m.height
	if end > len(m.pages) {
		end = len(m.pages)
	}

	for i := m.offset; i < end; i++ {
		p := m.pages[i]

		cursor := "  "
		style := listNormalStyle
		if i == m.cursor {
			cursor = "\u25b8 "
			style = listSelectedStyle
		}

		b.WriteString(cursor)
		b.WriteString(style.Render(p.Name))
		if marker := pageMarker(m.document, p); marker != "" {
			b.WriteString("  " + listDimStyle.Render("("+marker+")"))
		}
		b.WriteString("  " + listDimStyle.Render(fmt.Sprintf("%d nodes", p.NumChildren())))
		b.WriteString("\n")

		if i == m.cursor && m.expanded {
			for _, n := range p.Children() {
				b.WriteString(listDimStyle.Render(fmt.Sprintf("      %s %s", n.Type, n.Name)))
				b.WriteString("\n")
			}
		}
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.cursor+1, len(m.pages))))

	return b.String()
}
