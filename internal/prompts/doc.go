// Package prompts provides MCP prompt templates that ask the assistant to
// compose a message and deliver it with the send-message tool.
//
//   - send-greeting(to, occasion): a short greeting for an occasion
//   - send-haiku(to, theme): a haiku about a theme
//
// Prompts are static text. They validate nothing and have no side
// effects; missing arguments render as empty strings.
package prompts
