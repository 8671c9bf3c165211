package workflow_test

import (
	"fmt"

	"github.com/canicai/canicai/pkg/catalog"
	"github.com/canicai/canicai/pkg/workflow"
)

func component(id string, compatible bool) workflow.Payload {
	return workflow.Payload{Component: catalog.Component{ID: id, Name: id, Compatible: compatible}}
}

func ExampleWorkflow_compatibility() {
	w := workflow.New("studio")
	cam := w.AddNodeWithID("camera", component("camera", true), nil)
	enc := w.AddNodeWithID("encoder", component("encoder", false), nil)
	out := w.AddNodeWithID("display", component("display", true), nil)
	first := w.AddEdge(cam, enc)
	second := w.AddEdge(enc, out)

	e1, _ := w.Edge(first)
	e2, _ := w.Edge(second)
	fmt.Println("camera->encoder:", e1.Compatible)
	fmt.Println("encoder->display:", e2.Compatible)
	fmt.Println("compatible:", w.Compatible())
	// Output:
	// camera->encoder: yes
	// encoder->display: no
	// compatible: false
}

func ExampleWorkflow_AddNodeBetween() {
	w := workflow.New("studio")
	w.AddNodeWithID("camera", component("camera", true), nil)
	w.AddNodeWithID("display", component("display", true), nil)
	edge := w.AddEdge("camera", "display")

	mid := w.AddNodeBetween(component("switcher", true), edge)

	fmt.Println("edges:", w.EdgeCount())
	fmt.Println("camera->switcher:", w.HasEdge("camera", mid))
	fmt.Println("switcher->display:", w.HasEdge(mid, "display"))
	// Output:
	// edges: 2
	// camera->switcher: true
	// switcher->display: true
}

func ExampleWorkflow_RecalculateNodePosition() {
	w := workflow.New("layout")
	w.AddNodeWithID("p1", component("p1", true), &workflow.BoundingBox{Y: 0, Width: 100, Height: 10})
	w.AddNodeWithID("p2", component("p2", true), &workflow.BoundingBox{Y: 5, Width: 100, Height: 10})
	w.AddNodeWithID("d", component("d", true), &workflow.BoundingBox{Width: 100, Height: 10})
	w.AddEdge("p1", "d")
	w.AddEdge("p2", "d")

	w.RecalculateNodePosition("d")

	d, _ := w.Node("d")
	fmt.Println("y:", d.Box.Y)
	// Output:
	// y: 35
}
