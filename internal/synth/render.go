package synth

import (
	"fmt"
	"math"
	"strings"

	"github.com/krishanki/PhonePixie/internal/models"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var rupees = message.NewPrinter(language.MustParse("en-IN"))

// FormatPrice renders an amount as ₹ with Indian digit grouping
func FormatPrice(amount float64) string {
	return "₹" + rupees.Sprintf("%d", int64(math.Round(amount)))
}

func formatNumber(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%d", int64(v))
	}
	return fmt.Sprintf("%g", v)
}

func connectivity(p *models.Phone) string {
	parts := []string{"4G"}
	if p.Has5G {
		parts[0] = "5G"
	}
	if p.HasNFC {
		parts = append(parts, "NFC")
	}
	if p.HasIRBlaster {
		parts = append(parts, "IR Blaster")
	}
	return strings.Join(parts, ", ")
}

func searchReasons(p *models.Phone) []string {
	var reasons []string
	switch {
	case p.PrimaryCameraRear >= 50:
		reasons = append(reasons, fmt.Sprintf("%sMP camera for excellent photo quality", formatNumber(p.PrimaryCameraRear)))
	case p.PrimaryCameraRear >= 40:
		reasons = append(reasons, fmt.Sprintf("%sMP camera for good photos", formatNumber(p.PrimaryCameraRear)))
	}
	switch {
	case p.BatteryCapacity >= 5000:
		reasons = append(reasons, fmt.Sprintf("%dmAh battery for all-day usage", p.BatteryCapacity))
	case p.BatteryCapacity >= 4500:
		reasons = append(reasons, fmt.Sprintf("%dmAh battery for reliable battery life", p.BatteryCapacity))
	}
	switch {
	case p.RAMCapacity >= 8:
		reasons = append(reasons, fmt.Sprintf("%dGB RAM for smooth multitasking", p.RAMCapacity))
	case p.RAMCapacity >= 6:
		reasons = append(reasons, fmt.Sprintf("%dGB RAM for good performance", p.RAMCapacity))
	}
	switch {
	case p.RefreshRate >= 120:
		reasons = append(reasons, fmt.Sprintf("%dHz display for ultra-smooth scrolling", p.RefreshRate))
	case p.RefreshRate >= 90:
		reasons = append(reasons, fmt.Sprintf("%dHz display for smooth visuals", p.RefreshRate))
	}
	if p.Has5G {
		reasons = append(reasons, "5G ready for future-proof connectivity")
	}
	return reasons
}

// renderSearch lists every phone, numbered from 1
func renderSearch(phones []*models.Phone, budget *float64) string {
	var b strings.Builder

	count := len(phones)
	plural := ""
	if count > 1 {
		plural = "s"
	}
	fmt.Fprintf(&b, "I found %d excellent option%s for you", count, plural)
	if budget != nil {
		fmt.Fprintf(&b, " under %s", FormatPrice(*budget))
	}
	b.WriteString(":\n\n")

	for i, p := range phones {
		fmt.Fprintf(&b, "**%d. %s** - %s\n", i+1, p.Model, FormatPrice(p.Price))

		b.WriteString("**Why recommended?** ")
		if reasons := searchReasons(p); len(reasons) > 0 {
			if len(reasons) > 3 {
				reasons = reasons[:3]
			}
			b.WriteString(strings.Join(reasons, ", "))
			b.WriteString(". ")
		} else {
			fmt.Fprintf(&b, "Solid specs with %sMP camera, %dmAh battery, and %dGB RAM. ",
				formatNumber(p.PrimaryCameraRear), p.BatteryCapacity, p.RAMCapacity)
		}
		b.WriteString("Great value at this price point.\n\n")

		fmt.Fprintf(&b, "**Key Specs:** %sMP Camera • %dmAh Battery • %dGB RAM • %dGB Storage",
			formatNumber(p.PrimaryCameraRear), p.BatteryCapacity, p.RAMCapacity, p.InternalMemory)
		if p.Has5G {
			b.WriteString(" • 5G")
		}
		b.WriteString("\n\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func tableRow(b *strings.Builder, label string, phones []*models.Phone, cell func(*models.Phone) string) {
	fmt.Fprintf(b, "| **%s** |", label)
	for _, p := range phones {
		fmt.Fprintf(b, " %s |", cell(p))
	}
	b.WriteString("\n")
}

// renderCompare needs at least two phones
func renderCompare(phones []*models.Phone) string {
	var b strings.Builder

	names := make([]string, len(phones))
	for i, p := range phones {
		names[i] = p.Model
	}
	fmt.Fprintf(&b, "Let's compare %s:\n\n", strings.Join(names, " vs "))

	b.WriteString("**Quick Comparison:**\n\n")
	b.WriteString("| Feature |")
	for i := range phones {
		fmt.Fprintf(&b, " Phone %d |", i+1)
	}
	b.WriteString("\n|---------|")
	b.WriteString(strings.Repeat("---------|", len(phones)))
	b.WriteString("\n")

	tableRow(&b, "Model", phones, func(p *models.Phone) string { return p.Model })
	tableRow(&b, "Price", phones, func(p *models.Phone) string { return FormatPrice(p.Price) })
	tableRow(&b, "Camera", phones, func(p *models.Phone) string { return formatNumber(p.PrimaryCameraRear) + "MP" })
	tableRow(&b, "Battery", phones, func(p *models.Phone) string { return fmt.Sprintf("%dmAh", p.BatteryCapacity) })
	tableRow(&b, "RAM/Storage", phones, func(p *models.Phone) string {
		return fmt.Sprintf("%dGB/%dGB", p.RAMCapacity, p.InternalMemory)
	})
	tableRow(&b, "Display", phones, func(p *models.Phone) string {
		return fmt.Sprintf("%s\" %dHz", formatNumber(p.ScreenSize), p.RefreshRate)
	})
	tableRow(&b, "5G", phones, func(p *models.Phone) string {
		if p.Has5G {
			return "✓ Yes"
		}
		return "✗ No"
	})
	tableRow(&b, "Rating", phones, func(p *models.Phone) string { return formatNumber(p.Rating) + "/100" })

	b.WriteString("\n**What Makes Each Special:**\n\n")
	for i, p := range phones {
		fmt.Fprintf(&b, "**%d. %s** (%s)\n", i+1, p.Model, FormatPrice(p.Price))
		var highlights []string
		if p.PrimaryCameraRear >= 50 {
			highlights = append(highlights, fmt.Sprintf("%sMP camera is excellent for photography", formatNumber(p.PrimaryCameraRear)))
		}
		if p.BatteryCapacity >= 5000 {
			highlights = append(highlights, fmt.Sprintf("%dmAh battery provides all-day power", p.BatteryCapacity))
		}
		if p.RAMCapacity >= 8 {
			highlights = append(highlights, fmt.Sprintf("%dGB RAM ensures smooth multitasking", p.RAMCapacity))
		}
		if p.RefreshRate >= 120 {
			highlights = append(highlights, fmt.Sprintf("%dHz display offers ultra-smooth visuals", p.RefreshRate))
		}
		if p.Has5G {
			highlights = append(highlights, "5G support for faster connectivity")
		}
		if len(highlights) == 0 {
			highlights = append(highlights, fmt.Sprintf("Solid performance with %sMP camera and %dmAh battery",
				formatNumber(p.PrimaryCameraRear), p.BatteryCapacity))
		}
		if len(highlights) > 2 {
			highlights = highlights[:2]
		}
		for _, h := range highlights {
			fmt.Fprintf(&b, "• %s\n", h)
		}
		b.WriteString("\n")
	}

	cheapest, bestCamera, bestBattery := phones[0], phones[0], phones[0]
	for _, p := range phones[1:] {
		if p.Price < cheapest.Price {
			cheapest = p
		}
		if p.PrimaryCameraRear > bestCamera.PrimaryCameraRear {
			bestCamera = p
		}
		if p.BatteryCapacity > bestBattery.BatteryCapacity {
			bestBattery = p
		}
	}

	b.WriteString("**Quick Recommendations:**\n")
	fmt.Fprintf(&b, "• **Best Value:** %s (most affordable at %s)\n", cheapest.Model, FormatPrice(cheapest.Price))
	fmt.Fprintf(&b, "• **Best Camera:** %s (%sMP)\n", bestCamera.Model, formatNumber(bestCamera.PrimaryCameraRear))
	fmt.Fprintf(&b, "• **Best Battery:** %s (%dmAh)", bestBattery.Model, bestBattery.BatteryCapacity)

	return b.String()
}

func renderDetails(p *models.Phone) string {
	var b strings.Builder

	fmt.Fprintf(&b, "**%s** - %s\n\n", p.Model, FormatPrice(p.Price))

	b.WriteString("**Why Consider This Phone?**\n")
	var reasons []string
	camera := formatNumber(p.PrimaryCameraRear)
	switch {
	case p.PrimaryCameraRear >= 50:
		reasons = append(reasons, camera+"MP camera system delivers excellent photo quality, perfect for photography enthusiasts")
	case p.PrimaryCameraRear >= 40:
		reasons = append(reasons, camera+"MP camera provides good photo quality for everyday use")
	default:
		reasons = append(reasons, camera+"MP camera handles daily photography needs well")
	}
	switch {
	case p.BatteryCapacity >= 5000:
		r := fmt.Sprintf("%dmAh battery ensures all-day power", p.BatteryCapacity)
		if p.FastChargingAvailable {
			r += " with fast charging support"
		}
		reasons = append(reasons, r)
	case p.BatteryCapacity >= 4500:
		reasons = append(reasons, fmt.Sprintf("%dmAh battery provides reliable power through the day", p.BatteryCapacity))
	}
	switch {
	case p.RAMCapacity >= 8:
		reasons = append(reasons, fmt.Sprintf("%dGB RAM enables smooth multitasking and gaming", p.RAMCapacity))
	case p.RAMCapacity >= 6:
		reasons = append(reasons, fmt.Sprintf("%dGB RAM handles everyday apps and moderate multitasking", p.RAMCapacity))
	}
	switch {
	case p.RefreshRate >= 120:
		reasons = append(reasons, fmt.Sprintf("%dHz display offers ultra-smooth scrolling and animations", p.RefreshRate))
	case p.RefreshRate >= 90:
		reasons = append(reasons, fmt.Sprintf("%dHz display provides fluid visuals", p.RefreshRate))
	}
	if p.Has5G {
		reasons = append(reasons, "5G connectivity keeps you future-ready")
	}
	for _, r := range reasons {
		fmt.Fprintf(&b, "• %s\n", r)
	}

	b.WriteString("\n📱 **Detailed Specifications:**\n\n")
	fmt.Fprintf(&b, "• **Camera System**: %sMP main (%d rear cameras) + %sMP front\n",
		camera, p.NumRearCameras, formatNumber(p.PrimaryCameraFront))
	fmt.Fprintf(&b, "• **Battery**: %dmAh", p.BatteryCapacity)
	if p.FastChargingAvailable {
		b.WriteString(" with fast charging")
		if p.FastCharging > 0 {
			fmt.Fprintf(&b, " (%dW)", p.FastCharging)
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "• **Memory**: %dGB RAM, %dGB storage", p.RAMCapacity, p.InternalMemory)
	if p.ExtendedMemoryAvailable {
		if p.ExtendedUpto > 0 {
			fmt.Fprintf(&b, " (expandable to %dGB)", p.ExtendedUpto)
		} else {
			b.WriteString(" (expandable)")
		}
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "• **Display**: %s\" screen with %dHz refresh rate", formatNumber(p.ScreenSize), p.RefreshRate)
	if p.ResolutionWidth > 0 && p.ResolutionHeight > 0 {
		fmt.Fprintf(&b, " (%dx%d)", p.ResolutionWidth, p.ResolutionHeight)
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "• **Processor**: %d-core processor", p.NumCores)
	if p.ProcessorSpeed > 0 {
		fmt.Fprintf(&b, " at %s GHz", formatNumber(p.ProcessorSpeed))
	}
	b.WriteString("\n")
	fmt.Fprintf(&b, "• **OS**: %s\n", strings.ToUpper(p.OS))
	fmt.Fprintf(&b, "• **Connectivity**: %s\n", connectivity(p))
	fmt.Fprintf(&b, "• **Overall Rating**: %s/100\n\n", formatNumber(p.Rating))

	b.WriteString("**Best For:** ")
	var bestFor []string
	if p.PrimaryCameraRear >= 50 {
		bestFor = append(bestFor, "photography")
	}
	if p.BatteryCapacity >= 5000 {
		bestFor = append(bestFor, "heavy usage")
	}
	if p.RAMCapacity >= 8 {
		bestFor = append(bestFor, "gaming and multitasking")
	}
	if p.RefreshRate >= 90 {
		bestFor = append(bestFor, "smooth media consumption")
	}
	if len(bestFor) == 0 {
		bestFor = append(bestFor, "everyday use and general tasks")
	}
	b.WriteString(strings.Join(bestFor, ", "))

	return b.String()
}
