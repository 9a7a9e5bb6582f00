// Package messaging_tools provides the MCP tool for sending SMS messages.
//
// It exposes a single tool:
//
//   - send-message: Send a text message to a phone number
//
// The destination must start with "+". Messages are sent from the number
// configured in TWILIO_NUMBER. Vendor failures come back as error results
// carrying the vendor's message, so the assistant can report them.
//
// Example MCP tool call:
//
//	{
//	  "tool": "send-message",
//	  "arguments": {
//	    "to": "+15559876543",
//	    "message": "Hello from smsbridge!"
//	  }
//	}
package messaging_tools
