// Package calendar provides a client for the Google Calendar API.
//
// The client answers two questions for the assistant: when the user is busy
// (FindBusy, backed by the freebusy endpoint) and how to put a new event on
// the calendar (CreateEvent). FindBusy satisfies availability.BusyFinder.
//
// Example usage:
//
//	conf := google.NewOAuthConfig(google.OAuthConfig{ClientID: id, ClientSecret: secret})
//	client, err := calendar.NewClientForAccountWithProvider(ctx, "default", conf,
//	    google.NewFileTokenProvider(google.DefaultTokenDir()),
//	    calendar.WithLocation(loc))
//	if err != nil {
//	    return err
//	}
//	busy, err := client.FindBusy(ctx, time.Now(), time.Now().AddDate(0, 0, 7))
package calendar
