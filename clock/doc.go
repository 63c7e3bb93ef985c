// Package clock plans the STM32H7 power and clock tree.
//
// Freeze turns the requested system and PLL1 Q output frequencies into an
// immutable Clocks value: voltage scale, PLL1 dividers, bus prescalers and
// flash wait states. Every peripheral constructor consumes the result.
//
//	+-------------+---------+
//	| HSI         | 64MHz   |
//	| ref (DIVM)  | 2MHz    |
//	| VCO         | 192-836 |
//	| PCLKx       | <=100MHz|
//	+-------------+---------+
package clock
