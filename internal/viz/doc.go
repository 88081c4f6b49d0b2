// Package viz is the terminal front end: five parameter sliders driving an
// experiment.Experiment and a line plot of the resulting elongation series.
//
// Every slider change goes through Experiment.SetParam; the model never
// simulates on its own. View is plain string building, so the whole UI can
// be exercised headlessly through Update and View.
package viz
