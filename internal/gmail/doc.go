// Package gmail provides a read-only client for the Gmail API.
//
// The assistant only needs a digest of recent primary mail: ListRecentImportant
// searches the last days while excluding the promotions and social categories,
// fetches Subject, From and Date headers for each hit concurrently and returns
// the messages newest first.
//
// Authentication uses the token files of the google package.
//
// Example usage:
//
//	client, err := gmail.NewClientForAccountWithProvider(ctx, "default", conf, provider)
//	if err != nil {
//	    return err
//	}
//	msgs, err := client.ListRecentImportant(ctx, 7, 10)
package gmail
