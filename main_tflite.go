//go:build tflite

package main

import _ "github.com/krau/konadepth/tflite"
