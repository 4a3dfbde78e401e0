package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/jwebster45206/npc-engine/internal/admin"
	"github.com/muesli/reflow/wordwrap"
)

const PlaceHolderText = "Filter by name..."

// ConsoleUI is the BubbleTea model that walks an NPC's dialogue graph.
// https://github.com/charmbracelet/bubbletea
type ConsoleUI struct {
	api          *apiClient
	pageViewport viewport.Model
	metaViewport viewport.Model
	filter       textarea.Model
	ready        bool
	width        int
	height       int
	err          error
	status       string
	loading      bool

	// NPC selection state
	showNPCModal bool
	npcs         []admin.NPCSummary
	selectedNPC  int
	loadingNPCs  bool

	// Current conversation
	npc     *admin.NPCDetail
	page    *admin.PageDetail
	history []int

	// Quit confirmation state
	showQuitModal bool

	progressTick int
}

type npcsLoadedMsg struct {
	npcs []admin.NPCSummary
	err  error
}

type npcLoadedMsg struct {
	npc  *admin.NPCDetail
	page *admin.PageDetail
	err  error
}

type pageLoadedMsg struct {
	page *admin.PageDetail
	back bool
	err  error
}

type progressTickMsg struct{}

var (
	pagePanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(1).
			PaddingLeft(3).
			PaddingRight(0)

	metaPanelStyle = lipgloss.NewStyle().
			PaddingTop(2).
			PaddingBottom(0).
			PaddingLeft(0).
			PaddingRight(2)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")). // pink
			Bold(true)

	speakerStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("212")). // purple
			Bold(true)

	sayStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("86")) // green

	buttonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("39")) // teal

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196")) // red

	loadingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214")) // yellow

	promptStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")) // dark grey

	modalStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(1, 2).
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255"))

	modalTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("205")).
			Bold(true).
			Align(lipgloss.Center)

	modalItemStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("255"))

	modalSelectedItemStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("0")).
				Background(lipgloss.Color("205")).
				Bold(true)
)

var separatorStyle = lipgloss.NewStyle().
	Foreground(lipgloss.Color("240")) // dark grey

func NewConsoleUI(api *apiClient) ConsoleUI {
	ta := textarea.New()
	ta.Placeholder = PlaceHolderText
	ta.Focus()
	ta.Prompt = promptStyle.Render(":: ")
	ta.CharLimit = 60
	ta.SetWidth(50)
	ta.SetHeight(1)
	ta.ShowLineNumbers = false

	pageVp := viewport.New(50, 20)
	pageVp.MouseWheelEnabled = true

	metaVp := viewport.New(20, 20)

	return ConsoleUI{
		api:          api,
		filter:       ta,
		pageViewport: pageVp,
		metaViewport: metaVp,
		showNPCModal: true,
		loadingNPCs:  true,
	}
}

// filterNPCs keeps NPCs whose name contains keyword, ignoring case
func filterNPCs(npcs []admin.NPCSummary, keyword string) []admin.NPCSummary {
	keyword = strings.ToLower(strings.TrimSpace(keyword))
	if keyword == "" {
		return npcs
	}
	var out []admin.NPCSummary
	for _, n := range npcs {
		if strings.Contains(strings.ToLower(n.Name), keyword) {
			out = append(out, n)
		}
	}
	return out
}

// buttonTarget returns the destination of the nth listed button, counting from 1
func buttonTarget(page *admin.PageDetail, n int) (int, bool) {
	if page == nil || n < 1 || n > len(page.Buttons) {
		return 0, false
	}
	dest := page.Buttons[n-1].DestinationPageID
	return dest, dest != 0
}

// failTarget returns the fail page of the first check that has one
func failTarget(page *admin.PageDetail) (int, bool) {
	if page == nil {
		return 0, false
	}
	for _, c := range page.Checks {
		if c.FailPageID != 0 {
			return c.FailPageID, true
		}
	}
	return 0, false
}

func pageName(id int, description string) string {
	if description == "" {
		return fmt.Sprintf("#%d", id)
	}
	return fmt.Sprintf("#%d %s", id, description)
}

// renderPage formats a page for a panel of the given width
func renderPage(npc *admin.NPCDetail, page *admin.PageDetail, width int) string {
	if width < 20 {
		width = 20
	}
	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC DIALOGUE") + "\n\n")

	if page == nil {
		content.WriteString("This NPC has no entry page.\n")
		return content.String()
	}

	name := "?"
	if npc != nil {
		name = npc.Name
	}
	content.WriteString(fmt.Sprintf("%s  %s\n", pageName(page.ID, page.Description), promptStyle.Render("["+page.DialogLabel+"]")))
	content.WriteString(separatorStyle.Render(strings.Repeat("─", width-6)) + "\n\n")

	if page.Say != "" {
		prefix := name + ": "
		content.WriteString(speakerStyle.Render(prefix))
		content.WriteString(sayStyle.Render(wordwrap.String(page.Say, width-len(prefix))) + "\n\n")
	}
	if page.Arguments != "" {
		content.WriteString(promptStyle.Render("Arguments: "+page.Arguments) + "\n\n")
	}

	if len(page.Checks) > 0 {
		content.WriteString("Checks:\n")
		for _, c := range page.Checks {
			line := fmt.Sprintf("• %s %s %d", c.KindLabel, c.OperatorLabel, c.IntParam1)
			if c.Item != "" {
				line += " " + c.Item
			}
			if c.StringParam != "" {
				line += fmt.Sprintf(" %q", c.StringParam)
			}
			if c.FailPageID != 0 {
				line += " else " + pageName(c.FailPageID, c.FailPage)
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("\n")
	}

	if len(page.Actions) > 0 {
		content.WriteString("Actions:\n")
		for _, a := range page.Actions {
			line := fmt.Sprintf("• %s %d %d", a.KindLabel, a.IntParam1, a.IntParam2)
			if a.Item != "" {
				line += " " + a.Item
			}
			if a.Map != "" {
				line += " on " + a.Map
			}
			content.WriteString(line + "\n")
		}
		content.WriteString("\n")
	}

	if len(page.Goods) > 0 {
		content.WriteString("Goods:\n")
		for _, g := range page.Goods {
			content.WriteString(fmt.Sprintf("• %s x%.2f (%d)\n", g.Item, g.Rate, g.Cost))
		}
		content.WriteString("\n")
	}

	if len(page.Buttons) > 0 {
		for i, b := range page.Buttons {
			target := "(no destination)"
			if b.DestinationPageID != 0 {
				target = pageName(b.DestinationPageID, b.DestinationPage)
			}
			content.WriteString(buttonStyle.Render(fmt.Sprintf("[%d] button %d -> %s", i+1, b.ButtonID, target)) + "\n")
		}
		content.WriteString("\n")
	}
	if page.SuccessPageID != 0 {
		content.WriteString(buttonStyle.Render("[s] success -> "+pageName(page.SuccessPageID, page.SuccessPage)) + "\n")
	}
	return content.String()
}

func writeMetadata(npc *admin.NPCDetail, history []int, status string) string {
	var content strings.Builder
	content.WriteString(titleStyle.Render("NPC") + "\n\n")

	if npc != nil {
		content.WriteString(fmt.Sprintf("%s (#%d)\n\n", npc.Name, npc.ID))
		if npc.Region != "" {
			content.WriteString("Region:\n" + npc.Region + "\n\n")
		}
		if npc.Online && npc.Position != nil {
			content.WriteString(fmt.Sprintf("Online at:\n%s (%d, %d)\n\n", npc.MapName, npc.Position.X, npc.Position.Y))
		} else {
			content.WriteString("Offline\n\n")
		}
	}

	content.WriteString("Visited:\n")
	if len(history) == 0 {
		content.WriteString("None\n")
	}
	for _, id := range history {
		content.WriteString(fmt.Sprintf("• #%d\n", id))
	}

	if status != "" {
		content.WriteString("\n" + loadingStyle.Render(status) + "\n")
	}

	content.WriteString("\n")
	content.WriteString("Commands:\n")
	content.WriteString("• 1-9: Button\n")
	content.WriteString("• s: Success\n")
	content.WriteString("• f: Fail page\n")
	content.WriteString("• Backspace: Back\n")
	content.WriteString("• c: Copy text\n")
	content.WriteString("• n: NPC list\n")
	content.WriteString("• Ctrl+C: Quit\n")

	return content.String()
}

// refresh rebuilds both panels for the current viewport width
func (m *ConsoleUI) refresh() {
	content := renderPage(m.npc, m.page, m.pageViewport.Width-6)
	if m.loading {
		content += m.renderProgressBar()
	}
	if m.err != nil {
		content += "\n" + errorStyle.Render("Error: "+m.err.Error()) + "\n"
	}
	m.pageViewport.SetContent(content)
	m.metaViewport.SetContent(writeMetadata(m.npc, m.history, m.status))
}

func (m *ConsoleUI) resize() {
	pageWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - pageWidth - 6
	m.pageViewport.Width = pageWidth - 2
	m.pageViewport.Height = m.height - 4
	m.metaViewport.Width = metaWidth - 2
	m.metaViewport.Height = m.height - 4
	m.filter.SetWidth(50)
}

func (m ConsoleUI) Init() tea.Cmd {
	return tea.Batch(m.loadNPCs(), textarea.Blink)
}

func (m ConsoleUI) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.showQuitModal {
		return m.updateQuitModal(msg)
	}
	if m.showNPCModal {
		return m.updateNPCModal(msg)
	}

	var (
		vpCmd tea.Cmd
		mvCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.MouseMsg:
		m.pageViewport, vpCmd = m.pageViewport.Update(msg)
		m.metaViewport, mvCmd = m.metaViewport.Update(msg)
		return m, tea.Batch(vpCmd, mvCmd)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		m.ready = true
		m.refresh()

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyBackspace:
			if m.loading || len(m.history) == 0 {
				return m, nil
			}
			prev := m.history[len(m.history)-1]
			m.loading = true
			m.progressTick = 0
			return m, tea.Batch(m.loadPage(prev, true), progressTick())
		}

		if m.loading {
			return m, nil
		}
		key := msg.String()
		target, found := 0, false
		switch {
		case len(key) == 1 && key[0] >= '1' && key[0] <= '9':
			target, found = buttonTarget(m.page, int(key[0]-'0'))
		case key == "s" && m.page != nil:
			target, found = m.page.SuccessPageID, m.page.SuccessPageID != 0
		case key == "f":
			target, found = failTarget(m.page)
		case key == "c":
			m.status = "Nothing to copy"
			if m.page != nil && m.page.Say != "" {
				if err := clipboard.WriteAll(m.page.Say); err != nil {
					m.status = "Copy failed: " + err.Error()
				} else {
					m.status = "Copied page text"
				}
			}
			m.refresh()
			return m, nil
		case key == "n":
			m.showNPCModal = true
			m.loadingNPCs = true
			m.err = nil
			m.filter.Reset()
			m.filter.Focus()
			return m, tea.Batch(m.loadNPCs(), textarea.Blink)
		}
		if found {
			m.loading = true
			m.progressTick = 0
			m.err = nil
			m.refresh()
			return m, tea.Batch(m.loadPage(target, false), progressTick())
		}

	case pageLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			if msg.back {
				m.history = m.history[:len(m.history)-1]
			} else if m.page != nil {
				m.history = append(m.history, m.page.ID)
			}
			m.page = msg.page
			m.err = nil
			m.status = ""
			m.pageViewport.GotoTop()
		}
		m.refresh()
		return m, nil

	case progressTickMsg:
		if m.loading {
			m.progressTick++
			m.refresh()
			return m, progressTick()
		}
	}

	m.pageViewport, vpCmd = m.pageViewport.Update(msg)
	m.metaViewport, mvCmd = m.metaViewport.Update(msg)
	return m, tea.Batch(vpCmd, mvCmd)
}

func (m ConsoleUI) loadNPCs() tea.Cmd {
	return func() tea.Msg {
		npcs, err := m.api.listNPCs()
		return npcsLoadedMsg{npcs, err}
	}
}

func (m ConsoleUI) openNPC(id int) tea.Cmd {
	return func() tea.Msg {
		npc, err := m.api.getNPC(id)
		if err != nil {
			return npcLoadedMsg{err: err}
		}
		if npc.EntryPageID == 0 {
			return npcLoadedMsg{npc: &npc}
		}
		page, err := m.api.getPage(npc.EntryPageID)
		if err != nil {
			return npcLoadedMsg{err: err}
		}
		return npcLoadedMsg{npc: &npc, page: &page}
	}
}

func (m ConsoleUI) loadPage(id int, back bool) tea.Cmd {
	return func() tea.Msg {
		page, err := m.api.getPage(id)
		if err != nil {
			return pageLoadedMsg{err: err, back: back}
		}
		return pageLoadedMsg{page: &page, back: back}
	}
}

func (m ConsoleUI) visibleNPCs() []admin.NPCSummary {
	return filterNPCs(m.npcs, m.filter.Value())
}

func (m ConsoleUI) updateNPCModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case npcsLoadedMsg:
		m.loadingNPCs = false
		if msg.err != nil {
			m.err = msg.err
		} else {
			m.npcs = msg.npcs
			m.selectedNPC = 0
		}

	case npcLoadedMsg:
		m.loading = false
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.npc = msg.npc
		m.page = msg.page
		m.history = nil
		m.status = ""
		m.showNPCModal = false
		m.filter.Blur()
		if m.width > 0 && m.height > 0 {
			m.resize()
		}
		m.ready = true
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		if m.loadingNPCs || m.loading {
			if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyEsc {
				return m, tea.Quit
			}
			return m, nil
		}

		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.showQuitModal = true
			return m, nil
		case tea.KeyUp:
			if m.selectedNPC > 0 {
				m.selectedNPC--
			}
			return m, nil
		case tea.KeyDown:
			if m.selectedNPC < len(m.visibleNPCs())-1 {
				m.selectedNPC++
			}
			return m, nil
		case tea.KeyEnter:
			visible := m.visibleNPCs()
			if m.selectedNPC < len(visible) {
				m.loading = true
				m.err = nil
				return m, m.openNPC(visible[m.selectedNPC].ID)
			}
			return m, nil
		}

		var cmd tea.Cmd
		m.filter, cmd = m.filter.Update(msg)
		m.selectedNPC = 0
		return m, cmd
	}

	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	return m, cmd
}

func (m ConsoleUI) updateQuitModal(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc, tea.KeyEnter:
			return m, tea.Quit
		default:
			switch msg.String() {
			case "y", "Y":
				return m, tea.Quit
			case "n", "N":
				m.showQuitModal = false
				if m.showNPCModal {
					m.filter.Focus()
					return m, textarea.Blink
				}
				return m, nil
			}
		}
	}

	return m, nil
}

func (m ConsoleUI) renderQuitModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder
	content.WriteString(modalTitleStyle.Render("Quit?"))
	content.WriteString("\n\n")
	content.WriteString("Are you sure you want to leave the dialogue console?")
	content.WriteString("\n\n")
	content.WriteString(promptStyle.Render("Press Y to quit, N to continue, or Ctrl+C to force quit"))

	modal := modalStyle.Width(50).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) renderNPCModal() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	var content strings.Builder

	switch {
	case m.loadingNPCs:
		content.WriteString(modalTitleStyle.Render("Loading NPCs..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Please wait while we fetch the NPC list..."))
	case m.err != nil:
		content.WriteString(modalTitleStyle.Render("Error"))
		content.WriteString("\n\n")
		content.WriteString(errorStyle.Render(fmt.Sprintf("Request failed: %v", m.err)))
		content.WriteString("\n\n")
		content.WriteString("Press Ctrl+C to exit")
	case m.loading:
		content.WriteString(modalTitleStyle.Render("Opening NPC..."))
		content.WriteString("\n\n")
		content.WriteString(loadingStyle.Render("Fetching the entry page..."))
	default:
		content.WriteString(modalTitleStyle.Render("Select an NPC"))
		content.WriteString("\n\n")
		content.WriteString(m.filter.View())
		content.WriteString("\n\n")

		visible := m.visibleNPCs()
		if len(visible) == 0 {
			content.WriteString(promptStyle.Render("No NPCs match"))
			content.WriteString("\n")
		}
		for i, n := range visible {
			label := fmt.Sprintf("%s (#%d)", n.Name, n.ID)
			if n.Online {
				label += " *"
			}
			if i == m.selectedNPC {
				content.WriteString(modalSelectedItemStyle.Render("▶ " + label))
			} else {
				content.WriteString(modalItemStyle.Render("  " + label))
			}
			content.WriteString("\n")
		}

		content.WriteString("\n")
		content.WriteString(promptStyle.Render("Type to filter, ↑/↓ to navigate, Enter to open, Ctrl+C to exit"))
	}

	modal := modalStyle.Width(60).Render(content.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal, lipgloss.WithWhitespaceChars(" "))
}

func (m ConsoleUI) View() string {
	if m.showQuitModal {
		return m.renderQuitModal()
	}
	if m.showNPCModal {
		return m.renderNPCModal()
	}
	if !m.ready {
		return "\n  Initializing..."
	}

	pageWidth := int(float64(m.width)*0.75) - 4
	metaWidth := m.width - pageWidth - 6

	pagePanel := pagePanelStyle.Width(pageWidth).Height(m.height - 3).Render(
		m.pageViewport.View(),
	)
	metaPanel := metaPanelStyle.Width(metaWidth).Height(m.height - 2).Render(
		m.metaViewport.View(),
	)
	return lipgloss.JoinHorizontal(lipgloss.Top, pagePanel, metaPanel)
}

// renderProgressBar creates an animated progress bar for loading states
func (m ConsoleUI) renderProgressBar() string {
	usable := m.pageViewport.Width - 6
	if usable <= 0 {
		usable = 30
	}
	if usable > 80 {
		usable = 80
	} else if usable < 10 {
		usable = 10
	}

	const totalFrames = 40
	frame := m.progressTick % totalFrames
	filled := (frame * usable) / totalFrames

	var bar strings.Builder
	for i := 0; i < usable; i++ {
		if i < filled {
			bar.WriteString("█")
		} else if i == filled && frame%4 < 2 {
			bar.WriteString("▓")
		} else {
			bar.WriteString("░")
		}
	}
	return separatorStyle.Render(bar.String())
}

func progressTick() tea.Cmd {
	return tea.Tick(time.Millisecond*200, func(time.Time) tea.Msg {
		return progressTickMsg{}
	})
}
