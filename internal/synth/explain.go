package synth

import "regexp"

type explanation struct {
	term    string
	pattern *regexp.Regexp
	text    string
}

func term(name, pattern, text string) explanation {
	return explanation{term: name, pattern: regexp.MustCompile(`(?i)` + pattern), text: text}
}

// explanations are checked in order and the first match wins. The OIS/EIS
// comparison comes before the single-term entries.
var explanations = []explanation{
	term("ois_vs_eis", `\bois\b.*\beis\b|\beis\b.*\bois\b|optical.*electronic.*stabili|electronic.*optical.*stabili`, `**OIS vs EIS (Image Stabilization)**

Both technologies reduce blur caused by hand shake, but they work very differently.

**OIS (Optical Image Stabilization):**
- Hardware-based: gyroscopes detect movement and tiny motors shift the lens or sensor
- Works for both photos and videos
- Keeps the full sensor area, so there is no crop
- Big advantage in low light, where shutter speeds are slower

**EIS (Electronic Image Stabilization):**
- Software-based: frames are analysed, cropped and aligned digitally
- Mainly helps video recording
- Needs no extra hardware, so it appears even on budget phones
- Slight crop and some quality loss in very low light

**Which matters more?**
- OIS generally produces better results, especially for night photos and zoom
- EIS is a useful bonus for smooth video
- Many flagship phones combine both for the best results`),

	term("ir_blaster", `\b(ir|infrared)\s*blaster\b|\binfrared\b`, `**IR Blaster (Infrared Blaster)**

An IR Blaster is a hardware component that lets your phone work as a universal remote control for TVs, air conditioners and other appliances that use infrared signals.

**How it works:**
- Emits infrared light signals (invisible to human eyes)
- Mimics the signals of traditional remote controls
- Works with any device that has an IR receiver

**What you can control:**
- TVs and set-top boxes
- Air conditioners
- Home theater systems and projectors

**Practical use:**
- Use your phone as a universal remote
- Control devices even if the original remote is lost
- Usually works through a dedicated remote app

**Availability:**
IR Blasters have become less common in recent years. Xiaomi and Redmi phones often still include them, which makes them popular in India.`),

	term("ois", `\bois\b|optical\s+image\s+stabili[sz]ation`, `**OIS (Optical Image Stabilization)**

OIS is a camera technology that uses tiny motors to physically move the camera lens or sensor to counteract hand shake and movement while you take photos or record videos.

**How it works:**
- Gyroscopes detect hand movement
- Motors adjust the lens position in real time
- The result is sharper photos and smoother videos

**Benefits:**
- Better low-light photography
- Sharper images when shooting handheld
- Smoother video recording
- Especially useful for zoom shots

**What to look for:**
Look for "OIS" in the camera specifications. It is typically found on mid-range and higher-end phones and makes a significant difference in photo and video quality.`),

	term("eis", `\beis\b|electronic\s+image\s+stabili[sz]ation`, `**EIS (Electronic Image Stabilization)**

EIS is a software-based stabilization technique that crops and shifts the video frame digitally to compensate for camera shake.

**How it works:**
- Software analyses the video frames
- Frames are digitally cropped and aligned
- Smoother footage comes from processing rather than hardware

**Benefits:**
- Smoother video recording
- No additional hardware needed
- Works on budget phones

**OIS vs EIS:**
- OIS is hardware-based, EIS is software-based
- OIS helps both photos and videos, EIS mainly videos
- Many flagship phones have both`),

	term("refresh_rate", `refresh\s*rate|\b\d*\s?hz\b`, `**Refresh Rate**

The refresh rate (measured in Hz) is how many times per second your phone's screen updates the image.

**Common rates:**
- 60Hz: standard
- 90Hz: smooth
- 120Hz: very smooth
- 144Hz: ultra smooth, common on gaming phones

**Benefits of a higher refresh rate:**
- Smoother scrolling through apps and websites
- More responsive touch input
- Better gaming experience

**Trade-off:**
Higher refresh rates use more battery, but many phones adapt the rate to what you are doing.`),

	term("processor", `\b(processor|cpu|chipset|soc|snapdragon|mediatek|dimensity|exynos|bionic|tensor|octa[\s-]?core)\b`, `**Mobile Processor (CPU/Chipset)**

The processor is the brain of your phone. It handles every calculation and runs your apps.

**Key factors:**
- **Brand:** Snapdragon, MediaTek, Apple A-series, Exynos, Tensor
- **Cores:** more cores help multitasking (typically 8)
- **Speed:** measured in GHz
- **Generation:** newer chips are faster and more efficient

**Impact on daily use:**
- App loading speed and gaming performance
- Multitasking and battery efficiency
- Camera processing and AI features

**What to look for:**
For everyday use a mid-range chip (Snapdragon 7-series, MediaTek Dimensity) is plenty. For heavy gaming, look at flagship chips.`),

	term("ram", `\bram\b`, `**RAM (Random Access Memory)**

RAM is your phone's short-term memory. It holds the apps and data you are actively using.

**Common amounts:**
- 4GB: basic usage
- 6GB: moderate multitasking
- 8GB: good multitasking
- 12GB+: heavy multitasking and gaming

**What RAM does:**
- Keeps apps running in the background
- Enables smooth app switching without reloads

**RAM vs Storage:**
- RAM is temporary working memory, storage keeps your files
- RAM cannot be upgraded later`),

	term("storage", `\b(storage|internal\s+memory|rom)\b`, `**Internal Storage (ROM)**

Internal storage is your phone's permanent memory where apps, photos, videos and files are kept.

**Common amounts:**
- 64GB: basic usage, fills up quickly
- 128GB: comfortable for most users
- 256GB: good for media lovers
- 512GB+: for heavy users

**What uses storage:**
- Apps and games (1-5GB each)
- Photos, videos and music
- System files (10-20GB)

**Tips:**
- Check for expandable storage (microSD support)
- 128GB is the sweet spot for most users
- Storage cannot be upgraded later except through a memory card`),

	term("5g", `\b5\s?g\b`, `**5G Connectivity**

5G is the fifth generation of mobile network technology, offering much faster internet speeds and lower latency than 4G.

**Key benefits:**
- Much faster downloads and uploads
- Lower latency for gaming and video calls
- Better performance in crowded areas
- Future-proof for the next few years

**Considerations:**
- Needs 5G coverage in your area
- Slightly higher battery drain
- Now common on mid-range and flagship phones in India`),

	term("nfc", `\bnfc\b|near\s+field`, `**NFC (Near Field Communication)**

NFC is a short-range wireless technology that lets your phone talk to other devices or tags held very close (usually within 4cm).

**Common uses:**
- **Contactless payments:** tap to pay at supported terminals
- **Pairing devices:** quick Bluetooth pairing with speakers and headphones
- **Smart tags:** automate tasks by tapping a tag

**Availability:**
Common on flagship and many mid-range phones. Essential if you plan to use tap-to-pay.`),

	term("fast_charging", `\b(fast|quick|turbo|warp|dash|super)\s*charg`, `**Fast Charging**

Fast charging lets your phone charge much quicker than standard charging by delivering more power (watts).

**Common standards:**
- 18W: basic fast charging
- 25W-33W: standard fast charging
- 65W-100W: super fast charging
- 120W+: ultra fast charging

**Typical full charge times:**
- 18W: 1.5-2 hours
- 33W: about 1 hour
- 65W+: 30-45 minutes

**Note:**
Check what is in the box. Some phones support fast charging but ship without the fast charger.`),

	term("battery", `\b(battery|mah)\b`, `**Battery Capacity (mAh)**

Battery capacity, measured in mAh (milliampere-hour), is how much energy your phone's battery can store.

**Common capacities:**
- 3000-4000mAh: a day with light use
- 4000-5000mAh: a day with moderate use
- 5000-6000mAh: 1.5-2 days
- 6000mAh+: 2 days or more

**What affects battery life:**
- Screen size, brightness and refresh rate
- Processor efficiency
- Usage patterns and 5G

**Real-world expectation:**
5000mAh usually lasts a full day of heavy use, and software optimization matters as much as capacity.`),

	term("megapixels", `\bmegapixels?\b|\bmp\s+camera\b|\b\d+\s?mp\b|\bmp\b`, `**Camera Megapixels (MP)**

Megapixels describe the resolution of a camera, meaning how many millions of pixels each photo contains.

**Common ranges:**
- 12-16MP: sufficient for most users
- 48-50MP: good for cropping and zooming
- 64-108MP: very high resolution
- 200MP: the latest flagships

**Important truth:**
More megapixels do not automatically mean better photos. Sensor size, lens quality and software processing matter more.

**What really matters:**
- Sensor size (bigger is better)
- OIS
- Image processing and low-light performance
- The mix of lenses (wide, ultra-wide, telephoto)`),

	term("display_type", `\b(amoled|oled|lcd|ips)\b|display\s+type`, `**Display Types: AMOLED vs LCD**

**AMOLED (Active Matrix Organic LED):**
- Each pixel produces its own light
- True blacks and high contrast
- Vibrant colors and better efficiency in dark mode
- More expensive

**LCD (Liquid Crystal Display):**
- A backlight illuminates all pixels
- Good color accuracy but no true blacks
- Generally cheaper and common on budget phones

**Which is better?**
AMOLED is best for media and vibrant colors. LCD is still excellent for everyday use.`),
}

// lookupExplanation returns the built-in explanation for the first term
// mentioned in text
func lookupExplanation(text string) (explanation, bool) {
	for _, e := range explanations {
		if e.pattern.MatchString(text) {
			return e, true
		}
	}
	return explanation{}, false
}
