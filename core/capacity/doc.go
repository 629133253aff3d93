// Package capacity computes raw and constrained capacity factors for
// electrolyser units over one calendar month.
//
// The pipeline selects the month from an hourly flow series, derives a
// may-run mask per hour from a price gate, forced outages and any extra
// eligibility rules, applies a minimum turndown floor to the masked dispatch
// and reduces the unit×hour matrices to per-unit capacity factors and
// cross-unit statistics.
//
// The turndown floor is evaluated hour by hour. There is no start-up or
// shut-down state, so it approximates a unit-commitment constraint rather than
// modelling one.
//
// Everything here is synchronous and free of I/O. Each Run owns its random
// source, so concurrent analyses stay independently reproducible.
package capacity
