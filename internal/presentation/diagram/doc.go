// Package diagram serializes topics into Mermaid flowchart source for renderers and terminals.
package diagram
