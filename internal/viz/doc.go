// Package viz draws the dice world in a terminal.
//
// A [Canvas] packs 2x4 dots into each braille cell, so an 80x24 terminal
// region has 160x96 addressable dots. [Render3D] projects a [Wireframe]
// through the same orbit camera and perspective the GPU front ends use and
// rasterises its edges far-to-near.
package viz
