package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rostved/sitebook/api"
	"github.com/rostved/sitebook/editor"
	"github.com/rostved/sitebook/views"
)

var clientsCmd = &cobra.Command{
	Use:   "clients",
	Short: "List and add clients",
}

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List, add and inspect jobs",
}

func init() {
	clientsCmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List clients",
		Args:  cobra.NoArgs,
		RunE:  runClientsList,
	})

	clientsAddCmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add a client",
		Args:  cobra.ExactArgs(1),
		RunE:  runClientsAdd,
	}
	clientsAddCmd.Flags().String("address", "", "Street address")
	clientsAddCmd.Flags().String("phone", "", "Phone number")
	clientsCmd.AddCommand(clientsAddCmd)

	jobsListCmd := &cobra.Command{
		Use:   "list",
		Short: "List a client's jobs",
		Args:  cobra.NoArgs,
		RunE:  runJobsList,
	}
	jobsListCmd.Flags().String("client", "", "Client ID")
	_ = jobsListCmd.MarkFlagRequired("client")

	jobsAddCmd := &cobra.Command{
		Use:   "add TITLE",
		Short: "Add a job for a client",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsAdd,
	}
	jobsAddCmd.Flags().String("client", "", "Client ID")
	jobsAddCmd.Flags().String("description", "", "Job description")
	_ = jobsAddCmd.MarkFlagRequired("client")

	jobsShowCmd := &cobra.Command{
		Use:   "show JOB_ID",
		Short: "Show a job with its overview, invoices or quotes",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsShow,
	}
	jobsShowCmd.Flags().String("tab", string(editor.TabOverview), "What to show: overview, invoices or quotes")

	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsAddCmd)
	jobsCmd.AddCommand(jobsShowCmd)
	jobsCmd.AddCommand(&cobra.Command{
		Use:   "toggle JOB_ID",
		Short: "Flip a job between OPEN and COMPLETED",
		Args:  cobra.ExactArgs(1),
		RunE:  runJobsToggle,
	})
	jobsCmd.AddCommand(&cobra.Command{
		Use:   "overview JOB_ID",
		Short: "Show invoiced, paid, outstanding and quoted totals for a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := authed(cmd)
			if err != nil {
				return err
			}
			return a.check(a.showJob(args[0], editor.TabOverview))
		},
	})
}

func runClientsList(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	customers, err := a.client.Customers()
	if err != nil {
		return a.check(err)
	}
	return views.Customers(os.Stdout, customers)
}

func runClientsAdd(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	address, _ := cmd.Flags().GetString("address")
	phone, _ := cmd.Flags().GetString("phone")

	created, err := a.client.CreateCustomer(api.CustomerInput{Name: args[0], Address: address, Phone: phone})
	if err != nil {
		return a.check(err)
	}
	fmt.Printf("Added client %s (%s)\n", created.Name, created.ID)
	return nil
}

func runJobsList(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	clientID, _ := cmd.Flags().GetString("client")
	jobs, err := a.client.Jobs(clientID)
	if err != nil {
		return a.check(err)
	}
	return views.Jobs(os.Stdout, jobs)
}

func runJobsAdd(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	clientID, _ := cmd.Flags().GetString("client")
	description, _ := cmd.Flags().GetString("description")

	job, err := a.client.CreateJob(api.JobInput{ClientID: clientID, Title: args[0], Description: description})
	if err != nil {
		return a.check(err)
	}
	fmt.Printf("Added job %s (%s)\n", job.Title, job.ID)
	return nil
}

func runJobsToggle(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	job, err := a.client.JobDetail(args[0])
	if err != nil {
		return a.check(err)
	}
	next := job.Status.Toggle()
	if err := a.client.UpdateJobStatus(job.ID, next); err != nil {
		return a.check(err)
	}
	fmt.Printf("Job %s is now %s\n", job.Title, next)
	return nil
}

func runJobsShow(cmd *cobra.Command, args []string) error {
	a, err := authed(cmd)
	if err != nil {
		return err
	}
	tab, _ := cmd.Flags().GetString("tab")
	return a.check(a.showJob(args[0], editor.Tab(tab)))
}

// showJob is the job view: a heading plus one tab.
func (a *app) showJob(jobID string, tab editor.Tab) error {
	job, err := a.client.JobDetail(jobID)
	if err != nil {
		return err
	}
	if err := views.JobDetail(os.Stdout, job); err != nil {
		return err
	}
	fmt.Println()

	switch tab {
	case editor.TabInvoices:
		invoices, err := a.client.Invoices(jobID)
		if err != nil {
			return err
		}
		return views.Invoices(os.Stdout, a.cfg.Currency, invoices)
	case editor.TabQuotes:
		quotes, err := a.client.Quotes(jobID)
		if err != nil {
			return err
		}
		return views.Quotes(os.Stdout, quotes)
	case editor.TabOverview, "":
		overview, err := a.client.JobOverview(jobID)
		if err != nil {
			return err
		}
		return views.JobOverview(os.Stdout, a.cfg.Currency, overview)
	}
	return fmt.Errorf("unknown tab %q, use overview, invoices or quotes", tab)
}
