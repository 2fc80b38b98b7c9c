package api

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// now is replaced in tests.
var now = time.Now

func today() string {
	return now().Format(dateLayout)
}

func (c *Client) Customers() ([]Customer, error) {
	var customers []Customer
	if err := c.Do(http.MethodGet, "/clients", nil, nil, &customers); err != nil {
		return nil, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return customers, nil
}

func (c *Client) CreateCustomer(in CustomerInput) (*Customer, error) {
	if strings.TrimSpace(in.Name) == "" {
		return nil, fmt.Errorf("client name is required")
	}
	var created Customer
	if err := c.Do(http.MethodPost, "/clients", nil, in, &created); err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return &created, nil
}

func (c *Client) Jobs(clientID string) ([]Job, error) {
	params := url.Values{}
	params.Set("clientId", clientID)

	var jobs []Job
	if err := c.Do(http.MethodGet, "/jobs", params, nil, &jobs); err != nil {
		return nil, fmt.Errorf("failed to fetch jobs: %w", err)
	}
	return jobs, nil
}

func (c *Client) CreateJob(in JobInput) (*Job, error) {
	if in.ClientID == "" || strings.TrimSpace(in.Title) == "" {
		return nil, fmt.Errorf("client id and job title are required")
	}
	body := map[string]any{
		"client_id":  in.ClientID,
		"title":      in.Title,
		"start_date": today(),
	}
	if strings.TrimSpace(in.Description) != "" {
		body["description"] = in.Description
	}

	var created Job
	if err := c.Do(http.MethodPost, "/jobs", nil, body, &created); err != nil {
		return nil, fmt.Errorf("failed to create job: %w", err)
	}
	return &created, nil
}

func (c *Client) UpdateJobStatus(jobID string, status JobStatus) error {
	body := map[string]JobStatus{"status": status}
	if err := c.Do(http.MethodPut, "/jobs/"+url.PathEscape(jobID)+"/status", nil, body, nil); err != nil {
		return fmt.Errorf("failed to update job %s status: %w", jobID, err)
	}
	return nil
}

func (c *Client) JobDetail(jobID string) (*JobDetail, error) {
	var job JobDetail
	if err := c.Do(http.MethodGet, "/jobs/"+url.PathEscape(jobID), nil, nil, &job); err != nil {
		return nil, fmt.Errorf("failed to fetch job %s: %w", jobID, err)
	}
	return &job, nil
}

func (c *Client) JobOverview(jobID string) (*JobOverview, error) {
	var overview JobOverview
	if err := c.Do(http.MethodGet, "/jobs/"+url.PathEscape(jobID)+"/overview", nil, nil, &overview); err != nil {
		return nil, fmt.Errorf("failed to fetch job %s overview: %w", jobID, err)
	}
	return &overview, nil
}

func (c *Client) DashboardSummary() (*DashboardSummary, error) {
	var summary DashboardSummary
	if err := c.Do(http.MethodGet, "/dashboard/summary", nil, nil, &summary); err != nil {
		return nil, fmt.Errorf("failed to fetch dashboard summary: %w", err)
	}
	return &summary, nil
}
