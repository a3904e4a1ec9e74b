// Package google_tools provides MCP tools for authorizing Google accounts.
//
// An agent calls google_get_auth_url, lets the user grant access and passes
// the code to google_save_auth_code. The token is stored in the token
// directory and used by the calendar, mail and task tools without a restart.
package google_tools
