package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/glamour"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/evallife/llm-playground/internal/session"
	"github.com/evallife/llm-playground/internal/types"
)

type TViewUI struct {
	App          *tview.Application
	Pages        *tview.Pages
	ChatView     *tview.TextView
	InputField   *tview.InputField
	SettingsForm *tview.Form

	// Sidebar components
	Sidebar        *tview.List
	MainFlex       *tview.Flex
	chatFlex       *tview.Flex
	sidebarVisible bool

	ctrl        *session.Controller
	renderer    *glamour.TermRenderer
	turnErr     string
	queueUpdate func(func())
}

func NewTViewUI(cfg types.Config, transport session.Transport, logger *zap.Logger) *TViewUI {
	ui := &TViewUI{
		App:            tview.NewApplication(),
		Pages:          tview.NewPages(),
		sidebarVisible: true,
	}
	ui.queueUpdate = func(f func()) { ui.App.QueueUpdateDraw(f) }
	ui.ctrl = session.NewController(cfg, transport,
		session.WithLogger(logger),
		session.WithStatusFunc(ui.handleStatus),
	)

	// Theme / styling
	tview.Styles.PrimitiveBackgroundColor = tcell.ColorBlack
	tview.Styles.ContrastBackgroundColor = tcell.ColorDarkSlateGray
	tview.Styles.BorderColor = tcell.ColorDarkSlateGray
	tview.Styles.TitleColor = tcell.ColorLightSkyBlue
	tview.Styles.PrimaryTextColor = tcell.ColorWhite
	tview.Styles.SecondaryTextColor = tcell.ColorGray
	tview.Styles.TertiaryTextColor = tcell.ColorLightGray

	ui.renderer = newRenderer(80)

	ui.setupSidebar()
	ui.setupChatView()

	footer := ui.buildFooterBar()
	ui.chatFlex = tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(ui.ChatView, 0, 1, false).
		AddItem(ui.InputField, 3, 1, true).
		AddItem(footer, 3, 1, false)

	ui.MainFlex = tview.NewFlex().SetDirection(tview.FlexColumn)
	ui.layoutMain()

	ui.Pages.AddPage("chat", ui.MainFlex, true, true)
	ui.App.SetRoot(ui.Pages, true).EnableMouse(true)

	ui.App.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlN:
			ui.clearConversation()
			return nil
		case tcell.KeyCtrlS:
			ui.showSettings()
			return nil
		case tcell.KeyCtrlP:
			ui.showSystemPrompts()
			return nil
		case tcell.KeyCtrlB:
			ui.sidebarVisible = !ui.sidebarVisible
			ui.layoutMain()
			return nil
		}
		return event
	})

	ui.refreshChat()
	return ui
}

func (ui *TViewUI) layoutMain() {
	ui.MainFlex.Clear()
	if ui.sidebarVisible {
		ui.MainFlex.AddItem(ui.Sidebar, 20, 1, false)
	}
	ui.MainFlex.AddItem(ui.chatFlex, 0, 4, true)
	ui.App.SetFocus(ui.InputField)
}

func (ui *TViewUI) setupSidebar() {
	ui.Sidebar = tview.NewList().
		AddItem("Clear", "Empty the chat", 'n', ui.clearConversation).
		AddItem("Settings", "Endpoint & sampling", 's', ui.showSettings).
		AddItem("System Prompts", "Change AI role", 'p', ui.showSystemPrompts).
		AddItem("Quit", "Exit app", 'q', func() { ui.App.Stop() })

	ui.Sidebar.SetBorder(true).SetTitle(" Menu ")
	ui.Sidebar.SetTitleColor(tcell.ColorYellow)
}

func (ui *TViewUI) setupChatView() {
	ui.ChatView = tview.NewTextView().
		SetDynamicColors(true).
		SetRegions(true).
		SetWordWrap(true)
	ui.ChatView.SetBorder(true).SetTitle(" Chat ")
	ui.ChatView.SetTitleColor(tcell.ColorLightSkyBlue)

	ui.InputField = tview.NewInputField().
		SetLabel("> ").
		SetFieldWidth(0)
	ui.InputField.SetBorder(true).SetTitle(" Input (Enter to send, /help for commands) ")
	ui.InputField.SetTitleColor(tcell.ColorLightSkyBlue)
	ui.InputField.SetFieldBackgroundColor(tcell.ColorBlack)
	ui.InputField.SetFieldTextColor(tcell.ColorWhite)
	ui.InputField.SetLabelColor(tcell.ColorLightCyan)

	ui.InputField.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			text := ui.InputField.GetText()
			if text == "" {
				return
			}
			ui.handleInput(text)
		}
	})
}

func (ui *TViewUI) handleInput(input string) {
	if isCommand(input) {
		ui.InputField.SetText("")
		notice, cleared := runCommand(ui.ctrl, input)
		if cleared {
			ui.turnErr = ""
		}
		ui.refreshChat()
		ui.appendSystemMsg(notice)
		return
	}

	if err := ui.ctrl.Begin(input); err != nil {
		ui.appendSystemMsg(busyNotice(err))
		return
	}
	ui.InputField.SetText("")
	ui.turnErr = ""
	ui.refreshChat()
	go ui.ctrl.Resolve(context.Background())
}

// handleStatus runs on the goroutine resolving the turn. Thinking and
// cleared statuses originate in the event loop, which redraws on its own.
func (ui *TViewUI) handleStatus(s session.Status) {
	switch s.Kind {
	case session.StatusReply, session.StatusError:
		ui.queueUpdate(func() {
			if s.Kind == session.StatusError {
				ui.turnErr = s.Text
			}
			ui.refreshChat()
		})
	}
}

func (ui *TViewUI) refreshChat() {
	cfg := ui.ctrl.Config()
	ui.ChatView.SetTitle(fmt.Sprintf(" Chat · %s ", tview.Escape(cfg.Model)))
	ui.ChatView.Clear()
	if cfg.SystemPrompt != "" {
		fmt.Fprintf(ui.ChatView, "[gray][i]System Prompt: %s[-][/i]\n\n", tview.Escape(cfg.SystemPrompt))
	}
	for _, m := range ui.ctrl.Messages() {
		roleColor := "purple"
		if m.Role == types.RoleAssistant {
			roleColor = "green"
		}
		fmt.Fprintf(ui.ChatView, "[%s][b]%s[-][/b]\n", roleColor, m.Role.DisplayName())
		fmt.Fprintf(ui.ChatView, "%s\n\n", tview.TranslateANSI(tview.Escape(renderMarkdown(ui.renderer, m.Content))))
	}

	switch {
	case ui.ctrl.State() == session.AwaitingReply:
		fmt.Fprintf(ui.ChatView, "[green][b]%s[-][/b]\n[gray][i]%s[-][/i]\n\n", types.RoleAssistant.DisplayName(), session.ThinkingText)
	case ui.turnErr != "":
		fmt.Fprintf(ui.ChatView, "[green][b]%s[-][/b]\n[red]%s[-]\n\n", types.RoleAssistant.DisplayName(), tview.Escape(ui.turnErr))
	}
	ui.ChatView.ScrollToEnd()
}

func (ui *TViewUI) appendSystemMsg(msg string) {
	fmt.Fprintf(ui.ChatView, "[red][b]SYSTEM[-][/b]\n%s\n\n", tview.Escape(msg))
	ui.ChatView.ScrollToEnd()
}

func (ui *TViewUI) clearConversation() {
	if err := ui.ctrl.Clear(); err != nil {
		ui.appendSystemMsg(busyNotice(err))
		return
	}
	ui.turnErr = ""
	ui.Pages.SwitchToPage("chat")
	ui.refreshChat()
	ui.appendSystemMsg("Conversation cleared.")
}

func (ui *TViewUI) showSystemPrompts() {
	list := tview.NewList()
	for _, p := range Presets() {
		pCopy := p
		list.AddItem(p.Name, p.Content, 0, func() {
			cfg := ui.ctrl.Config()
			cfg.SystemPrompt = pCopy.Content
			ui.ctrl.SetConfig(cfg)
			ui.Pages.SwitchToPage("chat")
			ui.refreshChat()
			ui.appendSystemMsg(fmt.Sprintf("System prompt set to: %s", pCopy.Name))
		})
	}
	list.AddItem("Cancel", "", 'c', func() { ui.Pages.SwitchToPage("chat") })
	list.SetBorder(true).SetTitle(" Select System Prompt ")
	ui.Pages.AddPage("system_prompts", list, true, true)
	ui.Pages.SwitchToPage("system_prompts")
}

// buildSettingsForm reflects the current configuration each time it opens.
func (ui *TViewUI) buildSettingsForm() *tview.Form {
	values := settingsFromConfig(ui.ctrl.Config())

	form := tview.NewForm().
		AddInputField(fieldLabels[fieldEndpoint], values[fieldEndpoint], 60, nil, nil).
		AddPasswordField(fieldLabels[fieldAPIKey], values[fieldAPIKey], 60, '*', nil).
		AddInputField(fieldLabels[fieldModel], values[fieldModel], 40, nil, nil).
		AddInputField(fieldLabels[fieldMaxTokens], values[fieldMaxTokens], 8, tview.InputFieldInteger, nil).
		AddInputField(fieldLabels[fieldTemperature], values[fieldTemperature], 8, tview.InputFieldFloat, nil).
		AddInputField(fieldLabels[fieldTopP], values[fieldTopP], 8, tview.InputFieldFloat, nil).
		AddTextArea(fieldLabels[fieldSystemPrompt], values[fieldSystemPrompt], 60, 5, 0, nil)

	form.AddButton("Save", func() {
		ui.saveSettings(form)
	}).
		AddButton("Cancel", func() {
			ui.Pages.SwitchToPage("chat")
		})
	form.SetBorder(true).SetTitle(" Settings (Esc: back) ")
	form.SetCancelFunc(func() {
		ui.Pages.SwitchToPage("chat")
	})
	return form
}

func (ui *TViewUI) saveSettings(form *tview.Form) {
	var v settingsValues
	for i := 0; i < fieldCount; i++ {
		switch item := form.GetFormItem(i).(type) {
		case *tview.InputField:
			v[i] = item.GetText()
		case *tview.TextArea:
			v[i] = item.GetText()
		}
	}
	cfg, err := parseSettings(v)
	if err != nil {
		ui.showError(err.Error())
		return
	}
	ui.ctrl.SetConfig(cfg)
	ui.Pages.SwitchToPage("chat")
	ui.refreshChat()
}

func (ui *TViewUI) showSettings() {
	ui.SettingsForm = ui.buildSettingsForm()
	ui.Pages.AddPage("settings", ui.SettingsForm, true, false)
	ui.Pages.SwitchToPage("settings")
}

func (ui *TViewUI) showError(msg string) {
	modal := tview.NewModal().
		SetText(msg).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			ui.Pages.RemovePage("error")
		})
	ui.Pages.AddPage("error", modal, true, true)
}

func (ui *TViewUI) makeButton(label string, action func()) *tview.Button {
	btn := tview.NewButton(label)
	btn.SetSelectedFunc(action)
	btn.SetBackgroundColor(tcell.ColorDarkSlateGray)
	btn.SetBackgroundColorActivated(tcell.ColorLightSkyBlue)
	btn.SetLabelColor(tcell.ColorWhite)
	btn.SetLabelColorActivated(tcell.ColorBlack)
	return btn
}

func (ui *TViewUI) buildFooterBar() *tview.Flex {
	bar := tview.NewFlex().SetDirection(tview.FlexColumn)
	bar.SetBorder(true).SetTitle(" Actions ")
	bar.AddItem(ui.makeButton("Clear", ui.clearConversation), 0, 1, false)
	bar.AddItem(ui.makeButton("Prompts", ui.showSystemPrompts), 0, 1, false)
	bar.AddItem(ui.makeButton("Settings", ui.showSettings), 0, 1, false)
	bar.AddItem(ui.makeButton("Quit", func() { ui.App.Stop() }), 0, 1, false)
	return bar
}

func (ui *TViewUI) Run() error {
	return ui.App.Run()
}
