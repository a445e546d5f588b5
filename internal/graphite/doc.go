/*

Package graphite sends hardware sensor readings to a carbon endpoint as
plaintext protocol lines over a persistent TCP connection.

Series names are built from the sensor's hierarchical identifier and display
name, e.g. the sensor "/amdcpu/0/temperature/0" named "CPU Package" on host
"desktop" becomes:

	ohm.desktop.amdcpu.0.temperature.cpupackage 65.5 1621218049

In tagged mode the line carries the same path plus graphite tags for host,
hardware and sensor metadata instead of relying on the path alone.

The Writer keeps one connection and redials it lazily after any failure.
Reports are serialized through a timed gate: a report that cannot start
within the gate timeout is dropped rather than queued, since the next poll
will produce fresher values anyway.

*/
package graphite
