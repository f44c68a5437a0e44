package msgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

const graphBaseURL = "https://graph.microsoft.com/v1.0"

// eventFields limits calendarView responses to what the absence import reads.
const eventFields = "id,subject,isAllDay,isCancelled,showAs,start,end"

// Client reads the signed-in user's calendar from Microsoft Graph.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// NewClient returns a Graph client authenticated by ts.
func NewClient(ctx context.Context, ts oauth2.TokenSource) *Client {
	return NewClientWithHTTP(oauth2.NewClient(ctx, ts), graphBaseURL)
}

// NewClientWithHTTP returns a client sending requests through hc to baseURL.
func NewClientWithHTTP(hc *http.Client, baseURL string) *Client {
	return &Client{httpClient: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

// CalendarEvent is the subset of a Graph event the absence import needs.
type CalendarEvent struct {
	ID          string   `json:"id"`
	Subject     string   `json:"subject"`
	IsAllDay    bool     `json:"isAllDay"`
	IsCancelled bool     `json:"isCancelled"`
	ShowAs      string   `json:"showAs"` // free, tentative, busy, oof, workingElsewhere, unknown
	Start       DateTime `json:"start"`
	End         DateTime `json:"end"`
}

// DateTime is a Graph dateTimeTimeZone value.
type DateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type eventPage struct {
	Value    []CalendarEvent `json:"value"`
	NextLink string          `json:"@odata.nextLink"`
}

// APIError is a non-200 Graph response.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("graph API returned %d: %s", e.Status, e.Body)
}

// GetCalendarView returns all events overlapping [from, to), following
// @odata.nextLink pages. A non-empty timezone (IANA name) asks Graph to
// report event times in that zone.
func (c *Client) GetCalendarView(ctx context.Context, from, to time.Time, timezone string) ([]CalendarEvent, error) {
	q := url.Values{}
	q.Set("startDateTime", from.UTC().Format(time.RFC3339))
	q.Set("endDateTime", to.UTC().Format(time.RFC3339))
	q.Set("$select", eventFields)
	q.Set("$top", "100")
	next := c.baseURL + "/me/calendarView?" + q.Encode()

	var events []CalendarEvent
	for next != "" {
		page, err := c.fetchPage(ctx, next, timezone)
		if err != nil {
			return nil, err
		}
		events = append(events, page.Value...)
		next = page.NextLink
	}
	return events, nil
}

func (c *Client) fetchPage(ctx context.Context, endpoint, timezone string) (eventPage, error) {
	var page eventPage
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return page, fmt.Errorf("building calendarView request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if timezone != "" {
		req.Header.Set("Prefer", fmt.Sprintf(`outlook.timezone="%s"`, timezone))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return page, fmt.Errorf("calendarView request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return page, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return page, fmt.Errorf("decoding calendarView page: %w", err)
	}
	return page, nil
}
