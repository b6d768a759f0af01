package main

import (
	"fmt"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"prism/cmd/prism/ui"
	"prism/internal/store"
)

var browseLimit int

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse indexed chunks interactively",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, st, err := openStore()
		if err != nil {
			return err
		}
		defer st.Close()

		chunks, err := st.Chunks(cmd.Context(), browseLimit)
		if err != nil {
			return err
		}
		if len(chunks) == 0 {
			fmt.Println("index is empty; run `prism index` first")
			return nil
		}

		p := tea.NewProgram(newBrowseModel(chunks), tea.WithAltScreen())
		_, err = p.Run()
		return err
	},
}

func init() {
	browseCmd.Flags().IntVarP(&browseLimit, "limit", "n", 200, "maximum number of chunks to load")
}

// chunkItem adapts a stored chunk to the bubbles list.
type chunkItem struct {
	chunk store.StoredChunk
}

func (i chunkItem) Title() string {
	return fmt.Sprintf("%s:%d-%d", i.chunk.Path, i.chunk.StartLine, i.chunk.EndLine)
}

func (i chunkItem) Description() string {
	return fmt.Sprintf("%s, %d tokens", i.chunk.Language, i.chunk.Tokens)
}

func (i chunkItem) FilterValue() string {
	return i.chunk.Path
}

// browseModel shows the chunk list and a viewport for the selected chunk.
type browseModel struct {
	list     list.Model
	viewport viewport.Model
	styles   ui.Styles
	showing  bool
	ready    bool
}

func newBrowseModel(chunks []store.StoredChunk) browseModel {
	items := make([]list.Item, len(chunks))
	for i, c := range chunks {
		items[i] = chunkItem{chunk: c}
	}

	l := list.New(items, list.NewDefaultDelegate(), 0, 0)
	l.Title = "prism index"

	return browseModel{list: l, styles: ui.DefaultStyles()}
}

func (m browseModel) Init() tea.Cmd {
	return nil
}

func (m browseModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.list.SetSize(msg.Width, msg.Height-1)
		m.viewport = viewport.New(msg.Width, msg.Height-2)
		m.ready = true

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		case "q":
			if m.showing {
				m.showing = false
				return m, nil
			}
			return m, tea.Quit
		case "esc":
			if m.showing {
				m.showing = false
				return m, nil
			}
		case "enter":
			if !m.showing && m.ready {
				if item, ok := m.list.SelectedItem().(chunkItem); ok {
					m.viewport.SetContent(item.chunk.Text)
					m.viewport.GotoTop()
					m.showing = true
				}
				return m, nil
			}
		}
	}

	var cmd tea.Cmd
	if m.showing {
		m.viewport, cmd = m.viewport.Update(msg)
	} else {
		m.list, cmd = m.list.Update(msg)
	}
	return m, cmd
}

func (m browseModel) View() string {
	if !m.ready {
		return "loading..."
	}
	if m.showing {
		title := ""
		if item, ok := m.list.SelectedItem().(chunkItem); ok {
			title = m.styles.Title.Render(item.Title())
		}
		help := m.styles.Muted.Render("esc: back  q: list  ctrl+c: quit")
		return lipgloss.JoinVertical(lipgloss.Left, title, m.viewport.View(), help)
	}
	return m.list.View()
}
