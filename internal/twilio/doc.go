// Package twilio is a minimal client for the Twilio Programmable Messaging
// REST API.
//
// Only message creation is supported. Requests are authenticated with HTTP
// basic auth using the account SID and auth token, and are not retried.
//
// Example usage:
//
//	client := twilio.NewClient(cfg, metrics)
//	result, err := client.SendMessage(ctx, cfg.PhoneNumber, "+15551234567", "hello")
//	if err != nil {
//	    var apiErr *twilio.Error
//	    if errors.As(err, &apiErr) {
//	        // apiErr.Code carries the Twilio error code, if any
//	    }
//	    return err
//	}
//	fmt.Println(result.SID)
package twilio
