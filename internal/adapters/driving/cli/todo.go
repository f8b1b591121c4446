package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/noteward/noteward/internal/core/domain"
	"github.com/noteward/noteward/internal/core/ports/driving"
	"github.com/noteward/noteward/internal/core/services"
)

var (
	todoStatus   string
	todoJSON     bool
	todoPriority string
	todoDue      string
	todoPrune    bool
	todoClearDue bool
)

var todoCmd = &cobra.Command{
	Use:   "todo",
	Short: "Manage tasks extracted from your notes",
}

var todoListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks",
	RunE:  runTodoList,
}

var todoAddCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Add a manual task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoAdd,
}

var todoUpdateCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Edit a task's status, priority or due date",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoUpdate,
}

var todoDoneCmd = &cobra.Command{
	Use:   "done [id]",
	Short: "Mark a task completed",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoDone,
}

var todoRmCmd = &cobra.Command{
	Use:   "rm [id]",
	Short: "Delete a task",
	Args:  cobra.ExactArgs(1),
	RunE:  runTodoRm,
}

var todoExtractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Scan notes for task markers and reconcile the task list",
	Long: `Scans every note for checklist boxes and TODO/FIXME lines and merges
them into the task store. Re-running on unchanged notes changes
nothing; your edits to extracted tasks are preserved. With --prune,
tasks whose source text disappeared from the notes are removed.`,
	RunE: runTodoExtract,
}

var todoOverdueCmd = &cobra.Command{
	Use:   "overdue",
	Short: "List unfinished tasks past their due date",
	RunE:  runTodoOverdue,
}

func init() {
	todoListCmd.Flags().StringVar(&todoStatus, "status", "", "filter by status (pending, in_progress, completed)")
	todoListCmd.Flags().BoolVar(&todoJSON, "json", false, "output as JSON")
	todoAddCmd.Flags().StringVarP(&todoPriority, "priority", "p", "", "priority (low, medium, high)")
	todoAddCmd.Flags().StringVar(&todoDue, "due", "", `due date ("2006-01-02", "tomorrow", "next friday", ...)`)
	todoExtractCmd.Flags().BoolVar(&todoPrune, "prune", false, "remove tasks whose source text is gone")
	todoUpdateCmd.Flags().StringVar(&todoStatus, "status", "", "new status (pending, in_progress, completed)")
	todoUpdateCmd.Flags().StringVarP(&todoPriority, "priority", "p", "", "new priority (low, medium, high)")
	todoUpdateCmd.Flags().StringVar(&todoDue, "due", "", `new due date ("2006-01-02", "tomorrow", ...)`)
	todoUpdateCmd.Flags().BoolVar(&todoClearDue, "clear-due", false, "remove the due date")

	todoCmd.AddCommand(todoListCmd, todoAddCmd, todoUpdateCmd, todoDoneCmd, todoRmCmd, todoExtractCmd, todoOverdueCmd)
	rootCmd.AddCommand(todoCmd)
}

func runTodoList(cmd *cobra.Command, _ []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	tasks, err := taskService.List(context.Background(), domain.TaskStatus(todoStatus))
	if err != nil {
		return err
	}

	if todoJSON {
		return printJSON(cmd, tasks)
	}
	printTasks(cmd, tasks)
	return nil
}

func runTodoAdd(cmd *cobra.Command, args []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	var due *string
	if todoDue != "" {
		due = &todoDue
	}

	task, err := taskService.Add(context.Background(), args[0], domain.TaskPriority(todoPriority), due)
	if err != nil {
		return err
	}

	cmd.Printf("Added %s\n", task.ID)
	return nil
}

func runTodoUpdate(cmd *cobra.Command, args []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	var patch domain.TaskPatch
	if todoStatus != "" {
		status := domain.TaskStatus(todoStatus)
		patch.Status = &status
	}
	if todoPriority != "" {
		priority := domain.TaskPriority(todoPriority)
		patch.Priority = &priority
	}
	if todoDue != "" {
		due, err := services.ParseDueDate(todoDue, time.Now())
		if err != nil {
			return err
		}
		patch.DueDate = &due
	}
	patch.ClearDueDate = todoClearDue

	task, err := taskService.Update(context.Background(), args[0], patch)
	if err != nil {
		return err
	}

	cmd.Printf("Updated: %s\n", task.Content)
	return nil
}

func runTodoDone(cmd *cobra.Command, args []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	completed := domain.TaskStatusCompleted
	task, err := taskService.Update(context.Background(), args[0], domain.TaskPatch{Status: &completed})
	if err != nil {
		return err
	}

	cmd.Printf("Completed: %s\n", task.Content)
	return nil
}

func runTodoRm(cmd *cobra.Command, args []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	if err := taskService.Delete(context.Background(), args[0]); err != nil {
		return err
	}
	cmd.Println("Deleted.")
	return nil
}

func runTodoExtract(cmd *cobra.Command, _ []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	report, err := taskService.Extract(context.Background(), driving.ExtractOptions{Prune: todoPrune})
	if err != nil {
		return err
	}

	cmd.Printf("Scanned %d notes, found %d markers: %d added, %d refreshed, %d pruned\n",
		report.Scanned, report.Found, report.Added, report.Refreshed, report.Pruned)
	return nil
}

func runTodoOverdue(cmd *cobra.Command, _ []string) error {
	if taskService == nil {
		return errors.New("task service not configured")
	}

	tasks, err := taskService.Overdue(context.Background())
	if err != nil {
		return err
	}

	if len(tasks) == 0 {
		cmd.Println("Nothing overdue.")
		return nil
	}
	printTasks(cmd, tasks)
	return nil
}

func printTasks(cmd *cobra.Command, tasks []domain.TaskItem) {
	if len(tasks) == 0 {
		cmd.Println("No tasks.")
		return
	}

	for _, t := range tasks {
		box := "[ ]"
		switch t.Status {
		case domain.TaskStatusCompleted:
			box = "[x]"
		case domain.TaskStatusInProgress:
			box = "[~]"
		}

		line := fmt.Sprintf("%s %s %s", box, t.Content, mutedStyle.Render(t.ID))
		if t.Priority == domain.TaskPriorityHigh {
			line = fmt.Sprintf("%s %s", warnStyle.Render("!"), line)
		} else {
			line = "  " + line
		}
		cmd.Println(line)

		var meta string
		if t.DueDate != nil {
			due := "due " + t.DueDate.Format("2006-01-02")
			if t.Status != domain.TaskStatusCompleted && t.DueDate.Before(time.Now()) {
				cmd.Printf("      %s\n", overdueStyle.Render(due))
			} else {
				meta = due
			}
		}
		if !t.IsManual() {
			if meta != "" {
				meta += " · "
			}
			meta += t.SourceFile
			if t.SourceSection != "" {
				meta += " § " + t.SourceSection
			}
		}
		if meta != "" {
			cmd.Printf("      %s\n", mutedStyle.Render(meta))
		}
	}
}
