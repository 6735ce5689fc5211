/*
   CartFlash - cartridge flash save driver
   Copyright (c) 2021, Alexander Vollschwitz

   This file is part of CartFlash.

   CartFlash is free software: you can redistribute it and/or modify
   it under the terms of the GNU General Public License as published by
   the Free Software Foundation, either version 3 of the License, or
   (at your option) any later version.

   CartFlash is distributed in the hope that it will be useful,
   but WITHOUT ANY WARRANTY; without even the implied warranty of
   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
   GNU General Public License for more details.

   You should have received a copy of the GNU General Public License
   along with CartFlash. If not, see <http://www.gnu.org/licenses/>.
*/

/*
	Package protocol holds the command bytes, unlock addresses and save layout
	of the cartridge flash chips. It is shared by the flash driver and the
	simulated chip.

	Layout of the save window:

		0x0000 - 0x0003   payload length, native byte order
		0x0004 - ...      payload as produced by the codec
		0xfff0 - 0xfff3   copy of the payload length

	An erased chip reads 0xff everywhere, so a length of 0xffffffff means
	nothing has been written yet.
*/
package protocol
