package notifier

import (
	"fmt"
	"math"
	"time"
)

// Message is a rendered notification: subject plus an HTML body.
type Message struct {
	Subject string
	Body    string
}

func IncidentCreatedMessage(endpointName, endpointURL, projectName string, startedAt time.Time) Message {
	subject := fmt.Sprintf("🔴 Down: %s (%s)", endpointName, projectName)
	body := fmt.Sprintf(`<h2>Endpoint is Down</h2>
<p>We detected downtime on one of your monitored endpoints.</p>
<table>
<tr><td>Endpoint</td><td>%s</td></tr>
<tr><td>URL</td><td>%s</td></tr>
<tr><td>Project</td><td>%s</td></tr>
<tr><td>Detected at</td><td>%s</td></tr>
</table>
<p>Sent by Heartbeat. You can disable notifications in your project settings.</p>`,
		endpointName, endpointURL, projectName, startedAt.UTC().Format(time.RFC1123))
	return Message{Subject: subject, Body: body}
}

func IncidentResolvedMessage(endpointName, endpointURL, projectName string, startedAt, resolvedAt time.Time) Message {
	subject := fmt.Sprintf("🟢 Recovered: %s (%s)", endpointName, projectName)
	body := fmt.Sprintf(`<h2>Endpoint Recovered</h2>
<p>Your endpoint is back up and responding normally.</p>
<table>
<tr><td>Endpoint</td><td>%s</td></tr>
<tr><td>URL</td><td>%s</td></tr>
<tr><td>Project</td><td>%s</td></tr>
<tr><td>Down since</td><td>%s</td></tr>
<tr><td>Recovered at</td><td>%s</td></tr>
<tr><td>Duration</td><td>%s</td></tr>
</table>
<p>Sent by Heartbeat. You can disable notifications in your project settings.</p>`,
		endpointName, endpointURL, projectName,
		startedAt.UTC().Format(time.RFC1123), resolvedAt.UTC().Format(time.RFC1123),
		durationText(resolvedAt.Sub(startedAt)))
	return Message{Subject: subject, Body: body}
}

// durationText renders an outage duration in whole minutes, with a floor
// label for sub-minute outages.
func durationText(d time.Duration) string {
	minutes := int(math.Round(d.Minutes()))
	switch {
	case minutes < 1:
		return "less than a minute"
	case minutes == 1:
		return "1 minute"
	default:
		return fmt.Sprintf("%d minutes", minutes)
	}
}
