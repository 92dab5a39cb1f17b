/*
Package ports defines the driven ports (interfaces) of the storefront view.

These interfaces decouple the host session and the presentation logic from
concrete transports, rendering surfaces and product sources.

# Key Interfaces

  - HostTransport: carries the handshake and the host-context updates (stdio, Redis, in-process).
  - Document: the presentation substrate that theme, style variables and fonts are applied to.
  - ProductSource: where the catalog comes from.
*/
package ports
