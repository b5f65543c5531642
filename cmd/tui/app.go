package main

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/AugustoBSimionato/toodo/internal/ui"
	"github.com/AugustoBSimionato/toodo/pkg/auth"
	"github.com/AugustoBSimionato/toodo/pkg/store"
	"github.com/AugustoBSimionato/toodo/pkg/task"
	"github.com/AugustoBSimionato/toodo/pkg/view"
)

type screen int

const (
	screenLogin screen = iota
	screenRegister
	screenRecover
	screenTabs
)

const (
	tabPending = iota
	tabDone
	tabProfile
	tabAbout
	tabExit
)

// vmEventMsg carries one mailbox event from a view-model back onto the
// bubbletea update loop, which is the single thread that mutates it.
type vmEventMsg struct {
	vm *view.Model
	ev view.Event
}

type authResultMsg struct {
	op  string
	err error
}

type app struct {
	log     *slog.Logger
	session auth.Session
	pending *view.Model
	done    *view.Model

	screen screen
	width  int
	height int

	status    string
	statusErr bool
	busy      bool

	email    textinput.Model
	password textinput.Model
	confirm  textinput.Model
	focus    int

	tabs        ui.Tabs
	taskInput   textinput.Model
	typing      bool
	cursor      int
	confirmID   task.ID
	confirmText string

	spin spinner.Model
}

func newApp(log *slog.Logger, st store.Store, ses auth.Session) *app {
	email := textinput.New()
	email.Placeholder = "Digite seu email"
	email.Prompt = ""
	email.Width = 40
	email.Focus()

	password := textinput.New()
	password.Placeholder = "Digite sua senha"
	password.Prompt = ""
	password.Width = 40
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	confirm := textinput.New()
	confirm.Placeholder = "Confirme sua senha"
	confirm.Prompt = ""
	confirm.Width = 40
	confirm.EchoMode = textinput.EchoPassword
	confirm.EchoCharacter = '•'

	taskInput := textinput.New()
	taskInput.Prompt = ""
	taskInput.Width = 40

	spin := spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(lipgloss.NewStyle().Foreground(ui.Blue)))

	return &app{
		log:       log,
		session:   ses,
		pending:   view.New(false, st, ses, log),
		done:      view.New(true, st, ses, log),
		email:     email,
		password:  password,
		confirm:   confirm,
		tabs:      ui.NewTabs([]string{"Tarefas", "Concluídas", "Perfil", "Sobre", "Sair"}),
		taskInput: taskInput,
		spin:      spin,
	}
}

func (a *app) Init() tea.Cmd {
	a.pending.Start()
	a.done.Start()
	return tea.Batch(
		waitForEvent(a.pending),
		waitForEvent(a.done),
		textinput.Blink,
		a.spin.Tick,
	)
}

// waitForEvent blocks on a view-model mailbox and re-arms itself from
// Update after every event.
func waitForEvent(vm *view.Model) tea.Cmd {
	return func() tea.Msg {
		return vmEventMsg{vm: vm, ev: <-vm.Events()}
	}
}

func (a *app) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.tabs.Width = msg.Width
		return a, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spin, cmd = a.spin.Update(msg)
		return a, cmd

	case vmEventMsg:
		msg.vm.Handle(msg.ev)
		a.afterVMEvent(msg.vm)
		return a, waitForEvent(msg.vm)

	case authResultMsg:
		return a, a.onAuthResult(msg)

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			a.pending.Close()
			a.done.Close()
			return a, tea.Quit
		}
		switch a.screen {
		case screenLogin:
			return a, a.updateLogin(msg)
		case screenRegister:
			return a, a.updateRegister(msg)
		case screenRecover:
			return a, a.updateRecover(msg)
		case screenTabs:
			return a, a.updateTabs(msg)
		}
	}
	return a, nil
}

// afterVMEvent reacts to state the event handler left behind: surfaced
// errors and sign-out transitions.
func (a *app) afterVMEvent(vm *view.Model) {
	if err := vm.Err(); err != nil {
		if errors.Is(err, store.ErrUnauthenticated) {
			a.setError("Sessão expirada. Entre novamente.")
			a.toLogin()
		} else {
			a.setError(storeErrText(err))
		}
		vm.ClearErr()
	}
	if a.screen == screenTabs && a.session.Current() == nil {
		a.toLogin()
	}
	a.clampCursor()
}

func (a *app) onAuthResult(msg authResultMsg) tea.Cmd {
	a.busy = false
	switch msg.op {
	case "signin":
		if msg.err != nil {
			a.setError(authErrText(msg.err))
			return nil
		}
		a.enterTabs("")
	case "signup":
		if msg.err != nil {
			a.setError(authErrText(msg.err))
			return nil
		}
		a.enterTabs("Conta criada com sucesso!")
	case "recover":
		if msg.err != nil {
			a.setError(authErrText(msg.err))
			return nil
		}
		a.resetForms()
		a.screen = screenLogin
		a.setInfo("Se uma conta com este email existir, um link para redefinição de senha foi enviado.")
	case "signout":
		// errors are logged by the command; local session is cleared
		// regardless, so always route to login
		a.toLogin()
	}
	return nil
}

func (a *app) enterTabs(info string) {
	a.resetForms()
	a.screen = screenTabs
	a.tabs.Set(tabPending)
	a.cursor = 0
	a.setInfo(info)
}

func (a *app) toLogin() {
	a.resetForms()
	a.screen = screenLogin
	a.tabs.Set(tabPending)
	a.typing = false
	a.taskInput.Blur()
	a.taskInput.SetValue("")
	a.confirmID = ""
}

func (a *app) resetForms() {
	a.email.SetValue("")
	a.password.SetValue("")
	a.confirm.SetValue("")
	a.focus = 0
	a.email.Focus()
	a.password.Blur()
	a.confirm.Blur()
}

func (a *app) setError(s string) {
	a.status = s
	a.statusErr = true
}

func (a *app) setInfo(s string) {
	a.status = s
	a.statusErr = false
}

// formFields returns the inputs of the current auth screen, in focus
// order.
func (a *app) formFields() []*textinput.Model {
	switch a.screen {
	case screenRegister:
		return []*textinput.Model{&a.email, &a.password, &a.confirm}
	case screenRecover:
		return []*textinput.Model{&a.email}
	default:
		return []*textinput.Model{&a.email, &a.password}
	}
}

func (a *app) setFocus(i int) {
	fields := a.formFields()
	if i < 0 {
		i = len(fields) - 1
	}
	if i >= len(fields) {
		i = 0
	}
	a.focus = i
	for j, f := range fields {
		if j == i {
			f.Focus()
		} else {
			f.Blur()
		}
	}
}

func (a *app) updateFormInputs(msg tea.Msg) tea.Cmd {
	var cmds []tea.Cmd
	for _, f := range a.formFields() {
		var cmd tea.Cmd
		*f, cmd = f.Update(msg)
		cmds = append(cmds, cmd)
	}
	return tea.Batch(cmds...)
}

func (a *app) updateLogin(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "tab", "down":
		a.setFocus(a.focus + 1)
		return nil
	case "shift+tab", "up":
		a.setFocus(a.focus - 1)
		return nil
	case "ctrl+r":
		a.resetForms()
		a.status = ""
		a.screen = screenRegister
		return nil
	case "ctrl+o":
		a.resetForms()
		a.status = ""
		a.screen = screenRecover
		return nil
	case "enter":
		if a.busy {
			return nil
		}
		email := strings.TrimSpace(a.email.Value())
		password := a.password.Value()
		if email == "" || password == "" {
			a.setError("Por favor preencha todos os campos")
			return nil
		}
		a.busy = true
		a.status = ""
		return a.signInCmd(email, password)
	}
	return a.updateFormInputs(msg)
}

func (a *app) updateRegister(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.resetForms()
		a.status = ""
		a.screen = screenLogin
		return nil
	case "tab", "down":
		a.setFocus(a.focus + 1)
		return nil
	case "shift+tab", "up":
		a.setFocus(a.focus - 1)
		return nil
	case "enter":
		if a.busy {
			return nil
		}
		email := strings.TrimSpace(a.email.Value())
		password := a.password.Value()
		confirm := a.confirm.Value()
		if email == "" || password == "" || confirm == "" {
			a.setError("Por favor preencha todos os campos")
			return nil
		}
		if password != confirm {
			a.setError("As senhas não coincidem")
			return nil
		}
		a.busy = true
		a.status = ""
		return a.signUpCmd(email, password)
	}
	return a.updateFormInputs(msg)
}

func (a *app) updateRecover(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		a.resetForms()
		a.status = ""
		a.screen = screenLogin
		return nil
	case "enter":
		if a.busy {
			return nil
		}
		email := strings.TrimSpace(a.email.Value())
		if email == "" {
			a.setError("Por favor preencha o campo de email")
			return nil
		}
		a.busy = true
		a.status = ""
		return a.recoverCmd(email)
	}
	return a.updateFormInputs(msg)
}

func (a *app) signInCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{op: "signin", err: a.session.SignIn(context.Background(), email, password)}
	}
}

func (a *app) signUpCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{op: "signup", err: a.session.SignUp(context.Background(), email, password)}
	}
}

func (a *app) recoverCmd(email string) tea.Cmd {
	return func() tea.Msg {
		return authResultMsg{op: "recover", err: a.session.SendPasswordReset(context.Background(), email)}
	}
}

func (a *app) signOutCmd() tea.Cmd {
	return func() tea.Msg {
		err := a.session.SignOut(context.Background())
		if err != nil {
			a.log.Error("sign out failed", "err", err)
		}
		return authResultMsg{op: "signout", err: err}
	}
}

func (a *app) View() string {
	switch a.screen {
	case screenLogin:
		return a.viewLogin()
	case screenRegister:
		return a.viewRegister()
	case screenRecover:
		return a.viewRecover()
	default:
		return a.viewTabs()
	}
}

func (a *app) viewLogin() string {
	var b strings.Builder
	b.WriteString("\n  " + ui.TitleStyle.Render("TooDo") + "\n")
	b.WriteString("  " + ui.LabelStyle.Render("Organize suas tarefas") + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Email") + "\n")
	b.WriteString("  " + a.email.View() + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Senha") + "\n")
	b.WriteString("  " + a.password.View() + "\n\n")
	if a.busy {
		b.WriteString("  " + a.spin.View() + " Carregando...\n")
	}
	b.WriteString(a.statusLine())
	b.WriteString("\n  " + ui.HelpStyle.Render("enter entrar • ctrl+r cadastre-se • ctrl+o esqueceu a senha? • ctrl+c sair"))
	return b.String()
}

func (a *app) viewRegister() string {
	var b strings.Builder
	b.WriteString("\n  " + ui.TitleStyle.Render("Criar Conta") + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Email") + "\n")
	b.WriteString("  " + a.email.View() + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Senha") + "\n")
	b.WriteString("  " + a.password.View() + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Confirmar senha") + "\n")
	b.WriteString("  " + a.confirm.View() + "\n\n")
	if a.busy {
		b.WriteString("  " + a.spin.View() + " Carregando...\n")
	}
	b.WriteString(a.statusLine())
	b.WriteString("\n  " + ui.HelpStyle.Render("enter criar conta • esc voltar"))
	return b.String()
}

func (a *app) viewRecover() string {
	var b strings.Builder
	b.WriteString("\n  " + ui.TitleStyle.Render("Recuperar Senha") + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Email") + "\n")
	b.WriteString("  " + a.email.View() + "\n\n")
	if a.busy {
		b.WriteString("  " + a.spin.View() + " Enviando...\n")
	}
	b.WriteString(a.statusLine())
	b.WriteString("\n  " + ui.HelpStyle.Render("enter enviar link • esc voltar"))
	return b.String()
}

func (a *app) statusLine() string {
	if a.status == "" {
		return ""
	}
	style := ui.LabelStyle
	if a.statusErr {
		style = ui.ErrorStyle
	}
	return "\n  " + style.Render(a.status) + "\n"
}

func authErrText(err error) string {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		return "Email ou senha inválidos"
	case errors.Is(err, auth.ErrEmailInUse):
		return "Este email já está em uso"
	case errors.Is(err, auth.ErrWeakPassword):
		return "A senha deve ter pelo menos 6 caracteres"
	case errors.Is(err, auth.ErrUserDisabled):
		return "Esta conta foi desativada"
	case errors.Is(err, auth.ErrTooManyRequests):
		return "Muitas tentativas. Tente novamente mais tarde"
	case errors.Is(err, auth.ErrNetwork):
		return "Sem conexão. Verifique sua internet"
	default:
		return "Erro inesperado. Tente novamente"
	}
}

func storeErrText(err error) string {
	switch {
	case errors.Is(err, store.ErrNetwork):
		return "Sem conexão. Suas tarefas serão atualizadas quando a conexão voltar"
	case errors.Is(err, store.ErrPermissionDenied):
		return "Sem permissão para acessar suas tarefas"
	default:
		return "Erro inesperado. Tente novamente"
	}
}
