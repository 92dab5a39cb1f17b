/*
Package domain contains the core models of the storefront view.

It is kept pure and free of I/O, following Hexagonal Architecture principles.
Transports, documents and renderers live behind the interfaces in package ports.

# Key Entities

  - HostContext: the host's presentation parameters (theme, style variables, fonts, safe-area insets).
  - Merge: the field-wise last-writer-wins combination of a snapshot and a partial update.
  - Session: the lifecycle of the connection between the view and its host.
  - Product: a catalog entry with its discount calculation.
*/
package domain
