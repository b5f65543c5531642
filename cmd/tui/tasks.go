package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/AugustoBSimionato/toodo/internal/ui"
	"github.com/AugustoBSimionato/toodo/pkg/task"
	"github.com/AugustoBSimionato/toodo/pkg/view"
)

// currentVM returns the view-model behind the active tab, or nil when a
// non-list tab is selected.
func (a *app) currentVM() *view.Model {
	switch a.tabs.Value() {
	case tabPending:
		return a.pending
	case tabDone:
		return a.done
	}
	return nil
}

func (a *app) updateTabs(msg tea.KeyMsg) tea.Cmd {
	if a.confirmID != "" {
		switch msg.String() {
		case "s", "enter":
			if vm := a.currentVM(); vm != nil {
				vm.Destroy(a.confirmID)
			}
			a.confirmID = ""
		case "n", "esc":
			a.confirmID = ""
		}
		return nil
	}

	vm := a.currentVM()

	if a.typing {
		switch msg.String() {
		case "esc":
			a.closeInput(vm)
			return nil
		case "enter":
			if vm == nil {
				return nil
			}
			if vm.Mode() == view.ModeSearch {
				a.typing = false
				a.taskInput.Blur()
				return nil
			}
			if vm.Create(a.taskInput.Value()) {
				a.taskInput.SetValue("")
			}
			return nil
		default:
			var cmd tea.Cmd
			a.taskInput, cmd = a.taskInput.Update(msg)
			if vm != nil && vm.Mode() == view.ModeSearch {
				vm.SetQuery(a.taskInput.Value())
				a.cursor = 0
			}
			return cmd
		}
	}

	switch msg.String() {
	case "tab", "l", "right":
		return a.setTab(a.tabs.Value() + 1)
	case "shift+tab", "h", "left":
		return a.setTab(a.tabs.Value() - 1)
	case "alt+1":
		return a.setTab(tabPending)
	case "alt+2":
		return a.setTab(tabDone)
	case "alt+3":
		return a.setTab(tabProfile)
	case "alt+4":
		return a.setTab(tabAbout)
	case "alt+5":
		return a.setTab(tabExit)
	case "j", "down":
		a.moveCursor(1)
	case "k", "up":
		a.moveCursor(-1)
	case "g":
		a.cursor = 0
	case "G":
		if vm != nil {
			a.cursor = len(vm.Visible()) - 1
		}
		a.clampCursor()
	case "n":
		if vm != nil && !vm.Completed() {
			vm.SetMode(view.ModeCompose)
			a.openInput(vm)
		}
	case "/":
		if vm != nil {
			if vm.Mode() != view.ModeSearch {
				vm.ToggleMode()
			}
			a.openInput(vm)
		}
	case "esc":
		if vm != nil && vm.Mode() == view.ModeSearch {
			vm.ToggleMode()
			a.taskInput.SetValue("")
			a.cursor = 0
		}
	case " ", "t":
		if vm == nil {
			return nil
		}
		if t, ok := a.cursorTask(vm); ok {
			if vm.Completed() {
				vm.Uncomplete(t.ID)
			} else {
				vm.Complete(t.ID)
			}
		}
	case "x", "delete", "backspace":
		if vm == nil {
			return nil
		}
		if t, ok := a.cursorTask(vm); ok {
			a.confirmID = t.ID
			a.confirmText = t.Text
		}
	case "r":
		if vm != nil {
			vm.Refresh()
		}
	case "q":
		a.pending.Close()
		a.done.Close()
		return tea.Quit
	}
	return nil
}

func (a *app) setTab(i int) tea.Cmd {
	n := a.tabs.Len()
	i = ((i % n) + n) % n
	if i == tabExit {
		a.setInfo("Saindo...")
		return a.signOutCmd()
	}
	a.tabs.Set(i)
	a.cursor = 0
	a.typing = false
	a.taskInput.Blur()
	a.taskInput.SetValue("")
	a.status = ""
	return nil
}

func (a *app) openInput(vm *view.Model) {
	a.typing = true
	if vm.Mode() == view.ModeSearch {
		a.taskInput.Placeholder = "Buscar tarefas..."
		a.taskInput.SetValue(vm.Query())
	} else {
		a.taskInput.Placeholder = "Digite uma nova tarefa..."
		a.taskInput.SetValue("")
	}
	a.taskInput.CursorEnd()
	a.taskInput.Focus()
}

func (a *app) closeInput(vm *view.Model) {
	a.typing = false
	a.taskInput.Blur()
	a.taskInput.SetValue("")
	if vm != nil && vm.Mode() == view.ModeSearch {
		vm.ToggleMode()
	}
	a.cursor = 0
}

func (a *app) moveCursor(delta int) {
	a.cursor += delta
	a.clampCursor()
}

func (a *app) clampCursor() {
	vm := a.currentVM()
	if vm == nil {
		a.cursor = 0
		return
	}
	n := len(vm.Visible())
	if a.cursor >= n {
		a.cursor = n - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

func (a *app) cursorTask(vm *view.Model) (task.Task, bool) {
	visible := vm.Visible()
	if a.cursor < 0 || a.cursor >= len(visible) {
		return task.Task{}, false
	}
	return visible[a.cursor], true
}

func (a *app) viewTabs() string {
	var b strings.Builder
	b.WriteString(a.tabs.View())
	switch a.tabs.Value() {
	case tabPending, tabDone:
		b.WriteString(a.viewTaskList(a.currentVM()))
	case tabProfile:
		b.WriteString(a.viewProfile())
	case tabAbout:
		b.WriteString(a.viewAbout())
	case tabExit:
		b.WriteString("\n  Saindo...\n")
	}
	b.WriteString(a.statusLine())
	b.WriteString("\n  " + ui.HelpStyle.Render(a.helpText()))
	return b.String()
}

func (a *app) viewTaskList(vm *view.Model) string {
	var b strings.Builder

	if a.confirmID != "" {
		b.WriteString("\n  " + ui.TitleStyle.Render("Excluir tarefa") + "\n\n")
		b.WriteString("  Tem certeza que deseja excluir esta tarefa?\n\n")
		b.WriteString("  " + ui.TaskTitle.Render(a.confirmText) + "\n\n")
		b.WriteString("  " + ui.HelpStyle.Render("s excluir • n cancelar") + "\n")
		return b.String()
	}

	if a.typing {
		prefix := "➕"
		if vm.Mode() == view.ModeSearch {
			prefix = "🔍"
		}
		b.WriteString("  " + prefix + " " + a.taskInput.View() + "\n\n")
	} else if vm.Query() != "" {
		b.WriteString("  🔍 " + ui.LabelStyle.Render(vm.Query()) + "\n\n")
	}

	switch vm.Phase() {
	case view.PhaseSubscribing:
		b.WriteString("  " + a.spin.View() + " Carregando tarefas...\n")
		return b.String()
	case view.PhaseError:
		b.WriteString("  " + ui.ErrorStyle.Render("Não foi possível carregar suas tarefas.") + "\n")
		b.WriteString("  " + ui.HelpStyle.Render("r tentar novamente") + "\n")
		return b.String()
	}

	visible := vm.Visible()
	if len(visible) == 0 {
		b.WriteString(ui.EmptyStyle.Render(a.emptyText(vm)) + "\n")
		return b.String()
	}

	for i, t := range visible {
		icon := ui.TaskIcon.Render("∙")
		if vm.Completed() {
			icon = ui.DoneIcon.Render("✓")
		}
		title := ui.TaskTitle.Render(t.Text)
		if i == a.cursor {
			title = ui.TaskSelected.Render(t.Text)
		}
		date := ui.TaskDate.Render(ui.FormatTime(t.CreatedAt))
		b.WriteString(fmt.Sprintf(" %s%s  %s\n", icon, title, date))
	}
	if vm.InFlight() {
		b.WriteString("\n  " + a.spin.View() + " Salvando...\n")
	}
	return b.String()
}

func (a *app) emptyText(vm *view.Model) string {
	if vm.Query() != "" {
		return fmt.Sprintf("Nenhuma tarefa encontrada para %q", vm.Query())
	}
	if vm.Completed() {
		return "Você ainda não tem tarefas concluídas"
	}
	return "Você ainda não tem tarefas.\nPressione n para adicionar a primeira."
}

func (a *app) viewProfile() string {
	p := a.session.Current()
	if p == nil {
		return "\n" + ui.EmptyStyle.Render("Nenhuma conta conectada") + "\n"
	}
	initial := "?"
	if p.Email != "" {
		initial = strings.ToUpper(p.Email[:1])
	}
	var b strings.Builder
	b.WriteString("\n  " + ui.TitleStyle.Render("("+initial+") "+p.Email) + "\n\n")
	b.WriteString("  " + ui.LabelStyle.Render("Conta criada em:") + " " + ui.FormatTime(p.CreatedAt) + "\n")
	b.WriteString("  " + ui.LabelStyle.Render("Último acesso:") + "  " + ui.FormatTime(p.LastLoginAt) + "\n")
	return b.String()
}

func (a *app) viewAbout() string {
	var b strings.Builder
	b.WriteString("\n  " + ui.TitleStyle.Render("TooDo") + "\n")
	b.WriteString("  " + ui.LabelStyle.Render("Versão 1.0.0") + "\n\n")
	b.WriteString("  Um aplicativo simples e eficiente para gerenciamento\n")
	b.WriteString("  de tarefas, desenvolvido como projeto de TCC.\n")
	return b.String()
}

func (a *app) helpText() string {
	if a.confirmID != "" {
		return "s confirmar • n cancelar"
	}
	if a.typing {
		vm := a.currentVM()
		if vm != nil && vm.Mode() == view.ModeSearch {
			return "enter concluir busca • esc limpar"
		}
		return "enter adicionar • esc cancelar"
	}
	switch a.tabs.Value() {
	case tabPending:
		return "j/k navegar • espaço concluir • x excluir • n nova • / buscar • tab alternar • q sair"
	case tabDone:
		return "j/k navegar • espaço reabrir • x excluir • / buscar • tab alternar • q sair"
	default:
		return "tab alternar • q sair"
	}
}
